// Package service contains the business logic.
//
// It sits between the handler layer and the calculation engine. Handlers
// pass it already parsed input; it reports health and delegates
// calculations without knowing anything about HTTP.
package service
