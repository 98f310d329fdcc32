// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sphinxcode/sagecalculator-api/internal/handler"
	"github.com/sphinxcode/sagecalculator-api/internal/middleware"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

// NewRouter builds the echo instance serving the whole API.
//
// Middleware order, outermost first: request id, New Relic transaction and
// attributes, request-scoped logger, access log, metrics, panic recovery,
// then the request pipeline (security headers, CORS, body parsing, request
// log). Unmatched requests still run through all of it and end in the
// global error handler as a 404 envelope.
func NewRouter(s *server.Server, h *handler.Handlers) (*echo.Echo, error) {
	middlewares := middleware.NewMiddlewares(s)

	pipeline, err := middlewares.Global.Pipeline()
	if err != nil {
		return nil, err
	}

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		s.Metrics.Middleware(),
		middlewares.Global.Recover(),
		pipeline.Middleware(),
	)

	registerSystemRoutes(router, h)
	registerCalculateRoutes(router, h, middlewares)

	return router, nil
}
