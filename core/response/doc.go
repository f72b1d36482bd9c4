// Package response provides handler.Response constructors and error handlers
// for the router.
//
// A handler returns a Response; the router runs it against the response
// writer after the middleware chain unwinds:
//
//	r.Get("/users/:id", func(ctx *router.Context) handler.Response {
//		user, err := repo.Find(ctx, ctx.Param("id"))
//		if err != nil {
//			return response.Error(response.ErrNotFound.WithError(err))
//		}
//		return response.JSON(user)
//	})
//
// # Errors
//
// HTTPError carries a status, a machine readable code, a message and optional
// details. AsHTTPError converts any error, honouring a StatusCode() method, so
// the router's ErrNotFound and ErrMethodNotAllowed map to 404 and 405. Causes
// are only exposed for 4xx errors.
//
// Install one of the error handlers on the router:
//
//	r := router.New[*router.Context](
//		router.WithErrorHandler(response.JSONErrorHandler[*router.Context]),
//	)
//
// HTMLErrorHandler renders a templ component per error; DefaultErrorPage is
// used when no page is given. Error handlers skip rendering once the handler
// has already written the response.
//
// # WebSocket
//
// WebSocket upgrades the connection with gorilla/websocket and passes it to a
// WebSocketHandler. Errors after the upgrade go to WithWSErrorHandler since
// the HTTP response is gone by then.
package response
