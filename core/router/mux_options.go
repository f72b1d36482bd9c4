package router

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/waypoint/core/handler"
)

// Option configures a Router during creation.
type Option[C handler.Context] func(*mux[C])

// configured records which settings a router holds on purpose, so that
// mounting it does not replace them.
type configured uint8

const (
	cfgErrorHandler configured = 1 << iota
	cfgLogger
	cfgContext
)

// WithErrorHandler sets the handler for routing errors, handler errors and
// recovered panics. Mounted routers without their own inherit it.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.errorHandler = h
			m.configured |= cfgErrorHandler
		}
	}
}

// WithMiddleware adds router-level middleware, same as Use.
func WithMiddleware[C handler.Context](middlewares ...handler.Middleware[C]) Option[C] {
	return func(m *mux[C]) {
		m.middlewares = append(m.middlewares, middlewares...)
	}
}

// WithContextFactory sets how the request context is built from the writer,
// the request and the captured params.
func WithContextFactory[C handler.Context](f func(http.ResponseWriter, *http.Request, map[string]string) C) Option[C] {
	return func(m *mux[C]) {
		if f != nil {
			m.newContext = f
			m.configured |= cfgContext
		}
	}
}

// WithLogger sets the logger for registrations and recovered panics.
func WithLogger[C handler.Context](logger *slog.Logger) Option[C] {
	return func(m *mux[C]) {
		if logger != nil {
			m.logger = logger
			m.configured |= cfgLogger
		}
	}
}
