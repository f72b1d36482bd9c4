package simple

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Context is the request context handed to application handlers.
type Context struct {
	w      http.ResponseWriter
	r      *http.Request
	params map[string]string
	log    *slog.Logger
}

func (c *Context) Deadline() (deadline time.Time, ok bool) { return c.r.Context().Deadline() }
func (c *Context) Done() <-chan struct{}                   { return c.r.Context().Done() }
func (c *Context) Err() error                              { return c.r.Context().Err() }
func (c *Context) Value(key any) any                       { return c.r.Context().Value(key) }

func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

// ReplaceContext lets tracing install its span in the request context.
func (c *Context) ReplaceContext(ctx context.Context) {
	if ctx != nil {
		c.r = c.r.WithContext(ctx)
	}
}

func (c *Context) Request() *http.Request              { return c.r }
func (c *Context) ResponseWriter() http.ResponseWriter { return c.w }
func (c *Context) Param(key string) string             { return c.params[key] }

// Logger returns the application logger. Records logged with this context
// pick up the request ID.
func (c *Context) Logger() *slog.Logger { return c.log }
