package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sphinxcode/sagecalculator-api/internal/server"
	"github.com/sphinxcode/sagecalculator-api/internal/service"
)

// HealthHandler exposes the liveness endpoint used by load balancers and
// uptime monitors. It always answers 200 while the process can serve.
type HealthHandler struct {
	Handler
	health *service.HealthService
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(s *server.Server, health *service.HealthService) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		health:  health,
	}
}

// CheckHealth returns the current health snapshot.
func (h *HealthHandler) CheckHealth() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context) (*service.HealthSnapshot, error) {
		return h.health.Snapshot(c.Request().Context()), nil
	}, http.StatusOK)
}
