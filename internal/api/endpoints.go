// Package api holds the public route paths of the service.
//
// The router registers them, the root descriptor advertises them and the
// not-found envelope lists them, so they live in one place.
package api

const (
	// PathRoot serves the service descriptor.
	PathRoot = "/"

	// PathHealth serves the health snapshot.
	PathHealth = "/api/health"

	// PathCalculate is the prefix of the calculation route group.
	PathCalculate = "/api/calculate"
)

const (
	// ServiceName is the human readable name returned by the descriptor.
	ServiceName = "Sage Calculator API"

	// Version is reported by the descriptor and the health snapshot.
	Version = "1.0.0"

	// Description is returned by the descriptor.
	Description = "A comprehensive Human Design chart calculator API"

	// DocumentationURL points at the public API documentation.
	DocumentationURL = "https://github.com/sphinxcode/sagecalculator-api"
)

// AvailableEndpoints returns the route prefixes advertised to clients, in order.
// A fresh slice is returned on every call.
func AvailableEndpoints() []string {
	return []string{PathCalculate, PathHealth}
}
