package handler

import (
	"context"
	"net/http"
)

// Context is the request-scoped value handed to handlers and middleware.
// It carries the params captured during route resolution and exposes the raw
// request; parsing the body is left to the handler.
type Context interface {
	context.Context

	Request() *http.Request
	ResponseWriter() http.ResponseWriter

	// Param returns a captured route parameter, or "" if absent.
	Param(key string) string

	// SetValue stores a request-scoped value readable through Value.
	SetValue(key, val any)
}

// ContextReplacer is implemented by contexts whose request context can be
// swapped wholesale, for values keyed privately by other packages such as
// tracing spans.
type ContextReplacer interface {
	ReplaceContext(ctx context.Context)
}
