// Package handler defines the contracts shared by the router, middleware and
// response packages: the request Context, the deferred Response, typed
// HandlerFunc and Middleware, and the Chain that composes them.
//
// Handlers return a Response instead of writing directly:
//
//	func show(ctx *router.Context) handler.Response {
//		return response.String("user " + ctx.Param("id"))
//	}
//
// Middleware nests in registration order. Given Chain(h, a, b) a request
// passes a, then b, then h, and unwinds through b and then a:
//
//	h := handler.Chain(show, logging, auth)
//
// A middleware that returns its own Response without calling next stops the
// request on the way in; the handler never runs.
package handler
