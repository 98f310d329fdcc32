package errs

import (
	"net/http"
)

const (
	// MessageInternal is the only message clients see for unclassified failures.
	MessageInternal = "Internal server error"

	// MessageRouteNotFound is the message of the unmatched-route envelope.
	MessageRouteNotFound = "Endpoint not found"

	// MessagePayloadTooLarge matches the wording of common body parsers.
	MessagePayloadTooLarge = "request entity too large"
)

// New creates an HTTPError whose code is derived from the status text.
//
//	New(http.StatusTeapot, "short and stout") -> code "I'M_A_TEAPOT"
func New(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
func NewBadRequestError(message string) *HTTPError {
	return New(http.StatusBadRequest, message)
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return New(http.StatusNotFound, message)
}

// NewRouteNotFoundError creates the 404 returned for unmatched routes.
//
// endpoints is the canonical list of route prefixes, echoed back so that
// clients can discover the API.
func NewRouteNotFoundError(endpoints []string) *HTTPError {
	err := New(http.StatusNotFound, MessageRouteNotFound)
	err.AvailableEndpoints = append([]string(nil), endpoints...)
	return err
}

// NewPayloadTooLargeError creates a 413 HTTPError for oversized bodies.
func NewPayloadTooLargeError() *HTTPError {
	return New(http.StatusRequestEntityTooLarge, MessagePayloadTooLarge)
}

// NewTooManyRequestsError creates a 429 HTTPError.
func NewTooManyRequestsError(message string) *HTTPError {
	return New(http.StatusTooManyRequests, message)
}

// NewServiceUnavailableError creates a 503 HTTPError.
func NewServiceUnavailableError(message string) *HTTPError {
	return New(http.StatusServiceUnavailable, message)
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is always the generic one; the real error only goes to the logs.
func NewInternalServerError() *HTTPError {
	return New(http.StatusInternalServerError, MessageInternal)
}
