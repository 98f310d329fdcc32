package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sphinxcode/sagecalculator-api/internal/calculator"
	"github.com/sphinxcode/sagecalculator-api/internal/middleware"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
	"github.com/sphinxcode/sagecalculator-api/internal/service"
)

// CalculateResponse wraps the engine result in the success envelope.
type CalculateResponse struct {
	Success bool              `json:"success"`
	Data    calculator.Result `json:"data"`
}

// CalculateHandler hands calculation requests to the calculation service.
type CalculateHandler struct {
	Handler
	calculate *service.CalculateService
}

// NewCalculateHandler constructs a CalculateHandler.
func NewCalculateHandler(s *server.Server, calculate *service.CalculateService) *CalculateHandler {
	return &CalculateHandler{
		Handler:   NewHandler(s),
		calculate: calculate,
	}
}

// Calculate collects the request input and returns the engine result.
func (h *CalculateHandler) Calculate() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context) (*CalculateResponse, error) {
		body, _ := middleware.ParsedBody(c)

		result, err := h.calculate.Calculate(c.Request().Context(), calculator.Input{
			Method:  c.Request().Method,
			SubPath: strings.Trim(c.Param("*"), "/"),
			Query:   c.QueryParams(),
			Body:    body,
		})
		if err != nil {
			return nil, err
		}

		return &CalculateResponse{Success: true, Data: result}, nil
	}, http.StatusOK)
}
