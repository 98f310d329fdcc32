package service

import (
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

// Services groups the business layer used by the handlers.
type Services struct {
	Health    *HealthService
	Calculate *CalculateService
}

// NewServices builds every service from the application container.
func NewServices(s *server.Server) *Services {
	return &Services{
		Health:    NewHealthService(s),
		Calculate: NewCalculateService(s),
	}
}
