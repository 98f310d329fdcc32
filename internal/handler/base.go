package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/sphinxcode/sagecalculator-api/internal/middleware"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

// Handler is the base handler type that holds shared application dependencies.
type Handler struct {
	server *server.Server
}

// NewHandler constructs a base Handler.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint: it reads what it needs from the echo
// context and returns the response body or an error.
type HandlerFunc[Res any] func(c echo.Context) (Res, error)

// ResponseHandler defines how a successful result is written to the response.
type ResponseHandler interface {
	// Handle writes the HTTP response for the given result.
	Handle(c echo.Context, result interface{}) error

	// GetOperation returns an operation name used for structured logging.
	GetOperation() string
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

// Handle writes result as JSON with the configured status.
func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

// GetOperation names the operation in request logs.
func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

// handleRequest is the shared execution path of every endpoint.
//
// It logs with the request-scoped logger, times the handler, reports
// failures to New Relic and writes the response. Errors are returned
// untouched for the global error handler.
func handleRequest(
	c echo.Context,
	handler func(c echo.Context) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	result, err := handler(c)
	handlerDuration := time.Since(start)

	if err != nil {
		logger.Debug().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
	}

	logger.Debug().
		Dur("handler_duration", handlerDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed handler with logging and tracing and writes its
// result as JSON with status.
//
//	router.GET("/x", handler.Handle(h, myHandlerFn, http.StatusOK))
func Handle[Res any](h Handler, handler HandlerFunc[Res], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context) (interface{}, error) {
			return handler(c)
		}, JSONResponseHandler{status: status})
	}
}
