package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sphinxcode/sagecalculator-api/internal/api"
	"github.com/sphinxcode/sagecalculator-api/internal/handler"
)

// registerSystemRoutes registers the endpoints that are not part of the
// calculation API: the service descriptor and the health check.
//
// Each GET route also answers HEAD so liveness probes using HEAD get 200.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	describe := h.Root.Describe()
	r.GET(api.PathRoot, describe)
	r.HEAD(api.PathRoot, describe)

	checkHealth := h.Health.CheckHealth()
	for _, path := range []string{api.PathHealth, api.PathHealth + "/"} {
		r.GET(path, checkHealth)
		r.HEAD(path, checkHealth)
	}
}
