package router

import (
	"context"
	"net/http"
	"time"
)

// Context is the default request context used when no factory is configured.
type Context struct {
	w      http.ResponseWriter
	r      *http.Request
	params map[string]string
}

func newContext(w http.ResponseWriter, r *http.Request, params map[string]string) *Context {
	return &Context{w: w, r: r, params: params}
}

func (c *Context) Deadline() (deadline time.Time, ok bool) { return c.r.Context().Deadline() }
func (c *Context) Done() <-chan struct{}                   { return c.r.Context().Done() }
func (c *Context) Err() error                              { return c.r.Context().Err() }
func (c *Context) Value(key any) any                       { return c.r.Context().Value(key) }

// SetValue replaces the request with one whose context carries val.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

// ReplaceContext swaps the request context. A nil ctx is ignored.
func (c *Context) ReplaceContext(ctx context.Context) {
	if ctx != nil {
		c.r = c.r.WithContext(ctx)
	}
}

func (c *Context) Request() *http.Request              { return c.r }
func (c *Context) ResponseWriter() http.ResponseWriter { return c.w }

func (c *Context) Param(key string) string {
	return c.params[key]
}

// Params returns a copy of every captured parameter.
func (c *Context) Params() map[string]string {
	out := make(map[string]string, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

type routePatternKey struct{}

// RoutePattern returns the pattern of the route serving the request, mount
// prefixes included, or "" outside a matched route.
func RoutePattern(ctx context.Context) string {
	p, _ := ctx.Value(routePatternKey{}).(string)
	return p
}

func withRoutePattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routePatternKey{}, pattern)
}
