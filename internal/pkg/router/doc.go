// Package router adapts httprouter to handlers of the form
// func(*Request) (any, error) and wraps every route in the shared middleware
// chain: panic recovery, real client IP, correlation id, tracing with masked
// request/response logging, and maintenance switches.
//
// Successful results are rendered as {message, data, meta}; goerror values
// are rendered as {message, error} with the status their code maps to.
// Routes that need a bearer session add Authenticated() to their middleware.
package router
