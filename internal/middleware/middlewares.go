package middleware

import (
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

// Middlewares is a lightweight container that groups all middleware components
// used by the HTTP server, built once from the application container.
type Middlewares struct {
	// Global holds the request pipeline, access logging, recovery and the
	// global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches a request-scoped logger to every request.
	ContextEnhancer *ContextEnhancer

	// Tracing provides the New Relic middleware and transaction attributes.
	Tracing *TracingMiddleware

	// RateLimit limits the calculation routes per client IP.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components.
//
// When New Relic is not configured the tracing middleware is a no-op.
func NewMiddlewares(s *server.Server) *Middlewares {
	nrApp := s.LoggerService.GetApplication()

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
