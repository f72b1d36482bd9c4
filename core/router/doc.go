// Package router matches request paths against a tree of route patterns and
// dispatches to the handler bound for the request method.
//
// # Patterns
//
// A pattern is a '/'-separated list of segments:
//
//	/users          literal, matched exactly
//	/users/:id      param, captures one segment as "id"
//	/files/*path    wildcard, captures the rest of the path (one or more
//	                segments, joined by '/'); only valid as the last segment
//
// Leading, trailing and repeated slashes are not significant, for patterns
// and request paths alike. Request segments are percent-decoded and, like
// pattern literals, normalized to Unicode NFC before comparison.
//
// # Precedence
//
// At every position a literal child is tried before the param child, which
// is tried before the wildcard child, which is tried before a mounted
// router. When a branch cannot complete the match for the request method,
// resolution backtracks into the next one:
//
//	r.Get("/users/me", me)
//	r.Get("/users/:id", show)
//	r.Get("/users/:id/posts", posts)
//
//	GET /users/me        -> me
//	GET /users/42        -> show, id=42
//	GET /users/me/posts  -> posts, id=me
//
// # Methods
//
// A HEAD request falls back to the GET handler. Handlers registered with
// Handle (or Route.All) serve any method that has no handler of its own.
// When the path matches but the method does not, resolution reports
// MethodNotAllowed together with the allowed methods and ServeHTTP answers
// 405 with an Allow header.
//
//	r.At("/widgets").
//		Get(listWidgets).
//		Post(createWidget)
//
// # Mounting
//
// Mount attaches a router below a prefix. The mounted router resolves the
// remainder of the path and knows nothing about the prefix, so it can be
// tested alone or mounted more than once. Captures from all levels are
// merged; when names collide the innermost router wins.
//
//	api := router.New[*router.Context]()
//	api.Get("/hello", hello)
//	r.Mount("/api", api) // GET /api/hello
//
// Middleware registered with Use on the parent runs before middleware of
// the mounted router. Mounting api.With(auth) runs auth for every route of
// api, after api's own middleware.
//
// # Hosts
//
// Host routes requests by their Host header before the path is looked at.
// Labels are matched right to left, ports are ignored, and a ":name" label
// is captured like a path param:
//
//	r.Host("api.example.com", api)
//	r.Host(":tenant.example.com", tenants) // ctx.Param("tenant")
//
// When the host router has no route for the path, the path routes of r are
// tried.
//
// # Lifecycle
//
// Routes are registered during setup. Registration errors, such as binding
// the same method twice on one pattern or using two param names at the same
// position, are programming mistakes and panic with an error wrapping
// ErrRegistrationConflict. The first request (or call to Resolve) seals the
// router; the tree is then immutable and resolution takes no locks.
package router
