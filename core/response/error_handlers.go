package response

import (
	"net/http"

	"github.com/dmitrymomot/waypoint/core/handler"
)

type writtenReporter interface {
	Written() bool
}

// render serves resp for an error that reached the router. It does nothing
// when the handler already started the response.
func render[C handler.Context](ctx C, resp handler.Response) {
	w := ctx.ResponseWriter()
	if wr, ok := w.(writtenReporter); ok && wr.Written() {
		return
	}
	if err := resp(w, ctx.Request()); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ErrorHandler writes errors as plain text.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := AsHTTPError(err)
	render(ctx, StringWithStatus(httpErr.Message, httpErr.Status))
}

// JSONErrorHandler writes errors as {"code": ..., "message": ..., "details": ...}.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := AsHTTPError(err)
	render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}
