package handler

import "net/http"

// Response renders the outcome of a handler onto the wire.
// Rendering is deferred until the whole middleware chain has returned,
// so middleware can decorate or replace a response before anything is written.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc handles a matched route with a typed context.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler converts an error escaping the chain into a response.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware wraps a handler. A middleware that never calls next short-circuits
// the chain: inner middleware and the route handler do not run.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]

// Chain wraps h with middlewares so that the first middleware is the outermost:
// it enters first and leaves last.
func Chain[C Context](h HandlerFunc[C], middlewares ...Middleware[C]) HandlerFunc[C] {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		h = middlewares[i](h)
	}
	return h
}
