// Package errs define custom error types and utilities.
//
// Its purpose is to create specific error structures
// (e.g. HTTPError for API responses) and to map any error
// into the single JSON error envelope the API returns.
//
// - Return consistent error shapes to API clients (JSON).
// - Keep internal error detail out of response bodies.
// - Provide errors that play nicely with Go's standard errors package.
package errs

import "strings"

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message, safe to show to clients.
//   - Status: HTTP status code.
//   - AvailableEndpoints: only set on the route-not-found error.
type HTTPError struct {
	Code               string   `json:"code"`
	Message            string   `json:"message"`
	Status             int      `json:"status"`
	AvailableEndpoints []string `json:"availableEndpoints,omitempty"`

	// cause is the underlying error, logged but never serialized.
	cause error
}

// Error makes *HTTPError satisfy the built-in `error` interface.
// It returns the Message, so printing/logging the error shows the message.
func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Is returns true if `target` is also a *HTTPError.
//
// It does NOT compare Code/Status; it only checks the type.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithMessage returns a *copy* of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:               e.Code,
		Message:            message,
		Status:             e.Status,
		AvailableEndpoints: e.AvailableEndpoints,
		cause:              e.cause,
	}
}

// WithCause returns a copy of this HTTPError that wraps cause.
func (e *HTTPError) WithCause(cause error) *HTTPError {
	clone := e.WithMessage(e.Message)
	clone.cause = cause
	return clone
}

// ErrorBody is the nested `error` object of an error envelope.
type ErrorBody struct {
	Code               string   `json:"code"`
	Message            string   `json:"message"`
	Status             int      `json:"status"`
	AvailableEndpoints []string `json:"availableEndpoints,omitempty"`
	Timestamp          string   `json:"timestamp"`
}

// ErrorEnvelope is the JSON document written for every failed request.
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Request Entity Too Large" -> "REQUEST_ENTITY_TOO_LARGE"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
