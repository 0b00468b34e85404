// Package middlewares provides net/http middleware for serving pathway
// matchers.
//
// # Request ID
//
// RequestID assigns an ID to each request, reusing an upstream one when a
// known header carries it. The ID is set on the response and attached to
// the request context with logger.WithAttrs, so loggers built with
// logger.ContextAttrs() include "request_id" in every record.
//
//	r := chi.NewRouter()
//	r.Use(middlewares.RequestID())
//
// # Recover
//
// Recover catches panics raised by dispatchers, logs them with a stack
// trace and answers 500 when nothing was written yet.
//
//	r.Use(middlewares.Recover(log))
package middlewares
