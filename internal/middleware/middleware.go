// Package middleware stores global and route-specific middleware.
//
// The core of the package is the request Pipeline: an ordered list of
// stages (security headers, CORS, body parsing, request logging) driven
// by one loop. Around it sit the cross-cutting concerns such as request
// ids, tracing, access logging, panic recovery and rate limiting.
package middleware
