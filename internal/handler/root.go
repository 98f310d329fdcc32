package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sphinxcode/sagecalculator-api/internal/api"
	"github.com/sphinxcode/sagecalculator-api/internal/lib/utils"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

// Endpoints lists the public routes in the service descriptor.
type Endpoints struct {
	Calculate string `json:"calculate"`
	Health    string `json:"health"`
}

// ServiceDescriptor is the body of GET /.
type ServiceDescriptor struct {
	Success       bool      `json:"success"`
	Name          string    `json:"name"`
	Version       string    `json:"version"`
	Description   string    `json:"description"`
	Endpoints     Endpoints `json:"endpoints"`
	Documentation string    `json:"documentation"`
	Timestamp     string    `json:"timestamp"`
}

// RootHandler serves the static service descriptor.
type RootHandler struct {
	Handler
}

// NewRootHandler constructs a RootHandler.
func NewRootHandler(s *server.Server) *RootHandler {
	return &RootHandler{Handler: NewHandler(s)}
}

// Describe returns the service descriptor.
func (h *RootHandler) Describe() echo.HandlerFunc {
	return Handle(h.Handler, func(echo.Context) (*ServiceDescriptor, error) {
		return &ServiceDescriptor{
			Success:     true,
			Name:        api.ServiceName,
			Version:     api.Version,
			Description: api.Description,
			Endpoints: Endpoints{
				Calculate: api.PathCalculate,
				Health:    api.PathHealth,
			},
			Documentation: api.DocumentationURL,
			Timestamp:     utils.ISOTimestamp(time.Now()),
		}, nil
	}, http.StatusOK)
}
