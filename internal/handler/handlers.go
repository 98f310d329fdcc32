package handler

import (
	"github.com/sphinxcode/sagecalculator-api/internal/server"
	"github.com/sphinxcode/sagecalculator-api/internal/service"
)

// Handlers is a container that groups all HTTP handlers, so the router
// receives one object instead of many.
type Handlers struct {
	Root      *RootHandler      // Root serves the service descriptor.
	Health    *HealthHandler    // Health serves the liveness snapshot.
	Calculate *CalculateHandler // Calculate delegates to the calculation engine.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Root:      NewRootHandler(s),
		Health:    NewHealthHandler(s, services.Health),
		Calculate: NewCalculateHandler(s, services.Calculate),
	}
}
