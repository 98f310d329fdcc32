package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sphinxcode/sagecalculator-api/internal/errs"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

// GlobalMiddlewares groups the middleware applied to every request and the
// global error handler. It reads the CORS policy, the body limit and the
// base logger from *server.Server.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs the middleware bundle.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// Pipeline builds the ordered request pipeline:
// security headers, CORS, body parsing, request logging.
func (global *GlobalMiddlewares) Pipeline() (*Pipeline, error) {
	limit, err := global.server.Config.Server.BodyLimitBytes()
	if err != nil {
		return nil, err
	}

	return NewPipeline(
		SecureStage(),
		CORSStage(global.server.Config.CORS),
		BodyStage(limit),
		LogStage(global.server.Logger),
	), nil
}

// RequestLogger returns Echo's request logger middleware writing one "API"
// line per request with the final status and latency.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// A returned error has not been written yet; the global error
			// handler decides its status after this function ran.
			// See https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				statusCode = errs.Classify(v.Error).Status
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns handler panics into errors for the global error handler.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			GetLogger(c).Error().
				Err(err).
				Bytes("stack", stack).
				Msg("recovered from panic")
			return errors.WithStack(err)
		},
	})
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// The original error is logged; the client only receives the normalized
// envelope. Server-side failures are also noticed on the New Relic transaction.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	status, envelope := errs.Normalize(err, time.Now())

	logger := GetLogger(c)
	if status >= http.StatusInternalServerError {
		logger.Error().Stack().
			Err(err).
			Int("status", status).
			Str("error_code", envelope.Error.Code).
			Msg(envelope.Error.Message)

		if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
		}
	} else {
		logger.Debug().
			Err(err).
			Int("status", status).
			Str("error_code", envelope.Error.Code).
			Msg(envelope.Error.Message)
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, envelope)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to write error response")
	}
}
