package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sphinxcode/sagecalculator-api/internal/api"
	"github.com/sphinxcode/sagecalculator-api/internal/handler"
	"github.com/sphinxcode/sagecalculator-api/internal/middleware"
)

// registerCalculateRoutes mounts the calculation handler on the
// /api/calculate prefix. Every verb and every sub-path is delegated;
// the engine decides what it supports.
func registerCalculateRoutes(r *echo.Echo, h *handler.Handlers, mw *middleware.Middlewares) {
	calculate := r.Group(api.PathCalculate, mw.RateLimit.Limit(api.PathCalculate))

	handle := h.Calculate.Calculate()
	calculate.Any("", handle)
	calculate.Any("/*", handle)
}
