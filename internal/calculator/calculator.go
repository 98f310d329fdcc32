// Package calculator defines the boundary to the chart calculation engine.
//
// The HTTP layer never computes anything itself: it collects the request
// input and hands it to a Calculator supplied by the embedding program.
package calculator

import (
	"context"
	"net/url"

	"github.com/sphinxcode/sagecalculator-api/internal/errs"
)

// MessageUnavailable is returned when no engine has been wired in.
const MessageUnavailable = "calculation engine is not configured"

// Input is everything the calculation route knows about a request.
type Input struct {
	// Method is the HTTP verb (GET or POST).
	Method string

	// SubPath is the part of the URL below /api/calculate, without a leading slash.
	SubPath string

	// Query holds the URL query parameters.
	Query url.Values

	// Body is the parsed request body: a decoded JSON value, url.Values for
	// form posts, or nil when the request had no parsable body.
	Body any
}

// Result is the JSON document returned to the client on success.
type Result any

// Calculator computes a chart from the request input.
//
// Returned *errs.HTTPError values are sent to the client as-is; any other
// error becomes a 500.
type Calculator interface {
	Calculate(ctx context.Context, in Input) (Result, error)
}

// Func adapts an ordinary function to the Calculator interface.
type Func func(ctx context.Context, in Input) (Result, error)

// Calculate calls f(ctx, in).
func (f Func) Calculate(ctx context.Context, in Input) (Result, error) {
	return f(ctx, in)
}

// Unavailable is the Calculator used when the program did not provide one.
type Unavailable struct{}

// Calculate always fails with 503 Service Unavailable.
func (Unavailable) Calculate(context.Context, Input) (Result, error) {
	return nil, errs.NewServiceUnavailableError(MessageUnavailable)
}
