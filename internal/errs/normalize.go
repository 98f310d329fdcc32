package errs

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sphinxcode/sagecalculator-api/internal/api"
	"github.com/sphinxcode/sagecalculator-api/internal/lib/utils"
)

// Normalize maps any error into the status code and envelope sent to the client.
//
// Rules:
//   - an *HTTPError anywhere in the chain keeps its status and message;
//   - an *echo.HTTPError for an unknown route (404) or an undeclared verb (405)
//     becomes the route-not-found error;
//   - any other *echo.HTTPError keeps its code, and its message when it is a string;
//   - everything else becomes a 500 with the generic internal message.
//
// The timestamp is taken from now, so callers decide the clock.
func Normalize(err error, now time.Time) (int, ErrorEnvelope) {
	httpErr := Classify(err)

	message := httpErr.Message
	if message == "" {
		message = defaultMessage(httpErr.Status)
	}

	code := httpErr.Code
	if code == "" {
		code = MakeUpperCaseWithUnderscores(http.StatusText(httpErr.Status))
	}

	return httpErr.Status, ErrorEnvelope{
		Success: false,
		Error: ErrorBody{
			Code:               code,
			Message:            message,
			Status:             httpErr.Status,
			AvailableEndpoints: httpErr.AvailableEndpoints,
			Timestamp:          utils.ISOTimestamp(now),
		},
	}
}

// Classify turns err into the *HTTPError that describes the client response.
// It never returns nil.
func Classify(err error) *HTTPError {
	if err == nil {
		return NewInternalServerError()
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if !isErrorStatus(httpErr.Status) {
			return NewInternalServerError().WithCause(err)
		}
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch {
		case echoErr.Code == http.StatusNotFound, echoErr.Code == http.StatusMethodNotAllowed:
			return NewRouteNotFoundError(api.AvailableEndpoints()).WithCause(err)
		case !isErrorStatus(echoErr.Code):
			return NewInternalServerError().WithCause(err)
		}

		message, ok := echoErr.Message.(string)
		if !ok || message == "" || echoErr.Code >= http.StatusInternalServerError {
			message = defaultMessage(echoErr.Code)
		}
		return New(echoErr.Code, message).WithCause(err)
	}

	return NewInternalServerError().WithCause(err)
}

func isErrorStatus(status int) bool {
	return status >= http.StatusBadRequest && status <= 599
}

func defaultMessage(status int) string {
	if status >= http.StatusInternalServerError {
		return MessageInternal
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return MessageInternal
}
