package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sphinxcode/sagecalculator-api/internal/config"
	"github.com/sphinxcode/sagecalculator-api/internal/errs"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

func newTestServer(t *testing.T, logOutput *bytes.Buffer, mutate ...func(*config.Config)) *server.Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.CORS.AllowOrigins = []string{"*"}
	cfg.Observability = config.DefaultObservabilityConfig()
	for _, m := range mutate {
		m(cfg)
	}

	log := zerolog.Nop()
	if logOutput != nil {
		log = zerolog.New(logOutput)
	}

	s, err := server.New(cfg, &log, nil)
	require.NoError(t, err)
	return s
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errs.ErrorEnvelope {
	t.Helper()

	var envelope errs.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestGlobalMiddlewares_Pipeline(t *testing.T) {
	global := NewGlobalMiddlewares(newTestServer(t, nil))

	pipeline, err := global.Pipeline()
	require.NoError(t, err)
	assert.Equal(t, []string{StageSecure, StageCORS, StageBody, StageLog}, pipeline.Names())
}

func TestGlobalMiddlewares_PipelineRejectsBadLimit(t *testing.T) {
	s := newTestServer(t, nil, func(cfg *config.Config) { cfg.Server.BodyLimit = "huge" })

	_, err := NewGlobalMiddlewares(s).Pipeline()
	assert.Error(t, err)
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "http error",
			err:         errs.NewBadRequestError("Malformed JSON body"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Malformed JSON body",
		},
		{
			name:        "unknown route",
			err:         echo.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: errs.MessageRouteNotFound,
		},
		{
			name:        "plain error",
			err:         errors.New("secret connection string leaked"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: errs.MessageInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			global := NewGlobalMiddlewares(newTestServer(t, &logs))

			c, rec := newContext(httptest.NewRequest(http.MethodGet, "/x", nil))
			global.GlobalErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))

			envelope := decodeEnvelope(t, rec)
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.wantStatus, envelope.Error.Status)
			assert.Equal(t, tt.wantMessage, envelope.Error.Message)

			_, err := time.Parse(time.RFC3339Nano, envelope.Error.Timestamp)
			assert.NoError(t, err)

			assert.NotContains(t, rec.Body.String(), "secret")
		})
	}
}

func TestGlobalErrorHandler_LogsOriginalError(t *testing.T) {
	var logs bytes.Buffer
	global := NewGlobalMiddlewares(newTestServer(t, &logs))

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	c.Set(LoggerKey, global.server.Logger)

	global.GlobalErrorHandler(errors.New("disk on fire"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "disk on fire")
}

func TestGlobalErrorHandler_CommittedResponse(t *testing.T) {
	global := NewGlobalMiddlewares(newTestServer(t, nil))

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, c.String(http.StatusOK, "already sent"))

	global.GlobalErrorHandler(errors.New("late failure"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "already sent", rec.Body.String())
}

func TestGlobalErrorHandler_Head(t *testing.T) {
	global := NewGlobalMiddlewares(newTestServer(t, nil))

	c, rec := newContext(httptest.NewRequest(http.MethodHead, "/missing", nil))
	global.GlobalErrorHandler(echo.ErrNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRecover(t *testing.T) {
	global := NewGlobalMiddlewares(newTestServer(t, nil))

	e := echo.New()
	e.HTTPErrorHandler = global.GlobalErrorHandler
	e.Use(global.Recover())
	e.GET("/panic", func(echo.Context) error {
		panic("calculator exploded")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, errs.MessageInternal, envelope.Error.Message)
	assert.NotContains(t, rec.Body.String(), "exploded")
}

func TestRequestLogger_UsesErrorStatus(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, &logs)
	global := NewGlobalMiddlewares(s)

	e := echo.New()
	e.HTTPErrorHandler = global.GlobalErrorHandler
	e.Use(NewContextEnhancer(s).EnhanceContext(), global.RequestLogger())
	e.GET("/fail", func(echo.Context) error {
		return errs.NewServiceUnavailableError("engine down")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, logs.String(), `"status":503`)
	assert.Contains(t, logs.String(), `"message":"API"`)
}
