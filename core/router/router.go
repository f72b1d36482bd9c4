package router

import (
	"net/http"

	"github.com/dmitrymomot/waypoint/core/handler"
)

// Router registers routes during setup and resolves requests afterwards.
//
// Registration is single-writer. The first call to Resolve or ServeHTTP
// seals the router together with every router mounted under it; from then
// on the tree is read-only and safe for concurrent use, and any further
// registration panics with ErrRouterSealed.
type Router[C handler.Context] interface {
	http.Handler
	Routes

	// HTTP method handlers
	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Put(pattern string, h handler.HandlerFunc[C])
	Delete(pattern string, h handler.HandlerFunc[C])
	Patch(pattern string, h handler.HandlerFunc[C])
	Head(pattern string, h handler.HandlerFunc[C])
	Options(pattern string, h handler.HandlerFunc[C])
	Connect(pattern string, h handler.HandlerFunc[C])
	Trace(pattern string, h handler.HandlerFunc[C])

	// Handle binds h for every method. Method-specific bindings on the
	// same pattern take precedence.
	Handle(pattern string, h handler.HandlerFunc[C])
	Method(pattern string, h handler.HandlerFunc[C], methods ...string)

	// At returns a builder bound to pattern for chained registrations.
	At(pattern string) *Route[C]

	// Middleware
	Use(middlewares ...handler.Middleware[C])
	With(middlewares ...handler.Middleware[C]) Router[C]

	// Grouping and mounting
	Group(fn func(r Router[C])) Router[C]
	Route(pattern string, fn func(r Router[C])) Router[C]
	Mount(pattern string, sub Router[C])
	Host(pattern string, sub Router[C])

	// Resolve selects the handler for method and an escaped request path.
	Resolve(method, path string) Selection[C]
	// ResolveHost is Resolve with host routing applied to host.
	ResolveHost(method, host, path string) Selection[C]
}

// Routes provides route introspection for debugging and monitoring.
type Routes interface {
	Routes() []RouteInfo
}

// AnyMethod is reported by Routes for handlers bound to all methods.
const AnyMethod = "*"

// RouteInfo describes one registered binding.
type RouteInfo struct {
	Method  string
	Pattern string
	Host    string // host pattern, empty for routes served on any host
}

// New creates a router. Without WithContextFactory the context type must be
// *Context.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux[C](opts...)
}
