// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It reads the already parsed request from the echo context, calls the
// appropriate service and writes the JSON response. Errors are returned
// to the global error handler, never written here.
package handler
