package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.January, 2, 3, 4, 5, 6_000_000, time.UTC)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantCode    string
	}{
		{
			name:        "http error keeps status and message",
			err:         NewBadRequestError("Malformed JSON body"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Malformed JSON body",
			wantCode:    "BAD_REQUEST",
		},
		{
			name:        "wrapped http error is found in the chain",
			err:         fmt.Errorf("calculate: %w", NewServiceUnavailableError("engine down")),
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "engine down",
			wantCode:    "SERVICE_UNAVAILABLE",
		},
		{
			name:        "payload too large",
			err:         NewPayloadTooLargeError(),
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantMessage: MessagePayloadTooLarge,
			wantCode:    "REQUEST_ENTITY_TOO_LARGE",
		},
		{
			name:        "plain error hides its text",
			err:         errors.New("pq: password authentication failed for user admin"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MessageInternal,
			wantCode:    "INTERNAL_SERVER_ERROR",
		},
		{
			name:        "nil error",
			err:         nil,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MessageInternal,
			wantCode:    "INTERNAL_SERVER_ERROR",
		},
		{
			name:        "non error status is treated as internal",
			err:         &HTTPError{Status: http.StatusOK, Message: "fine"},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MessageInternal,
			wantCode:    "INTERNAL_SERVER_ERROR",
		},
		{
			name:        "empty message falls back to status text",
			err:         &HTTPError{Status: http.StatusConflict},
			wantStatus:  http.StatusConflict,
			wantMessage: "Conflict",
			wantCode:    "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := Normalize(tt.err, fixedNow)

			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.wantStatus, envelope.Error.Status)
			assert.Equal(t, tt.wantMessage, envelope.Error.Message)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
			assert.Equal(t, "2025-01-02T03:04:05.006Z", envelope.Error.Timestamp)
			assert.Empty(t, envelope.Error.AvailableEndpoints)
		})
	}
}

func TestNormalize_RouteNotFound(t *testing.T) {
	endpoints := []string{"/api/calculate", "/api/health"}

	status, envelope := Normalize(NewRouteNotFoundError(endpoints), fixedNow)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, MessageRouteNotFound, envelope.Error.Message)
	assert.Equal(t, endpoints, envelope.Error.AvailableEndpoints)

	raw, err := json.Marshal(envelope)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, false, body["success"])

	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(http.StatusNotFound), errBody["status"])
	assert.Equal(t, []any{"/api/calculate", "/api/health"}, errBody["availableEndpoints"])
}

func TestNormalize_EchoErrors(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantMessage   string
		wantEndpoints []string
	}{
		{
			name:          "unknown route",
			err:           echo.ErrNotFound,
			wantStatus:    http.StatusNotFound,
			wantMessage:   MessageRouteNotFound,
			wantEndpoints: []string{"/api/calculate", "/api/health"},
		},
		{
			name:          "undeclared verb",
			err:           echo.ErrMethodNotAllowed,
			wantStatus:    http.StatusNotFound,
			wantMessage:   MessageRouteNotFound,
			wantEndpoints: []string{"/api/calculate", "/api/health"},
		},
		{
			name:        "string message is kept",
			err:         echo.NewHTTPError(http.StatusBadRequest, "missing field"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "missing field",
		},
		{
			name:        "non string message uses status text",
			err:         echo.NewHTTPError(http.StatusUnauthorized, map[string]string{"reason": "x"}),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "server side echo error hides its message",
			err:         echo.NewHTTPError(http.StatusBadGateway, "upstream 10.0.0.7 refused"),
			wantStatus:  http.StatusBadGateway,
			wantMessage: MessageInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := Normalize(tt.err, fixedNow)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantStatus, envelope.Error.Status)
			assert.Equal(t, tt.wantMessage, envelope.Error.Message)
			assert.Equal(t, tt.wantEndpoints, envelope.Error.AvailableEndpoints)
		})
	}
}

func TestClassify_KeepsCause(t *testing.T) {
	cause := errors.New("boom")

	httpErr := Classify(cause)

	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.ErrorIs(t, httpErr, cause)
}

func TestNormalize_OmitsAvailableEndpointsByDefault(t *testing.T) {
	_, envelope := Normalize(NewBadRequestError("nope"), fixedNow)

	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "availableEndpoints")
}

func TestHTTPError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewServiceUnavailableError("engine down").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "engine down", err.Error())
	assert.True(t, errors.Is(err, &HTTPError{}))
}
