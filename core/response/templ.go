package response

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/waypoint/core/handler"
)

// Templ renders component as text/html with 200 OK status.
func Templ(component templ.Component) handler.Response {
	return TemplWithStatus(component, http.StatusOK)
}

// TemplWithStatus renders component with the request context, so request
// scoped values are visible to it.
func TemplWithStatus(component templ.Component, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if component == nil {
			return ErrInternalServerError.WithMessage("nil templ component")
		}
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", contentTypeHTML)
		w.WriteHeader(status)
		if err := component.Render(r.Context(), w); err != nil {
			return fmt.Errorf("templ component render error: %w", err)
		}
		return nil
	}
}

// ErrorPage builds the HTML body for an error.
type ErrorPage func(HTTPError) templ.Component

// HTMLErrorHandler returns an error handler that renders page. A nil page
// uses DefaultErrorPage.
func HTMLErrorHandler[C handler.Context](page ErrorPage) handler.ErrorHandler[C] {
	if page == nil {
		page = DefaultErrorPage
	}
	return func(ctx C, err error) {
		httpErr := AsHTTPError(err)
		render(ctx, TemplWithStatus(page(httpErr), httpErr.Status))
	}
}

// DefaultErrorPage is a minimal HTML document showing the status and message.
func DefaultErrorPage(e HTTPError) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"<!DOCTYPE html><html><head><title>%d %s</title></head><body><h1>%d</h1><p>%s</p></body></html>",
			e.Status, templ.EscapeString(http.StatusText(e.Status)), e.Status, templ.EscapeString(e.Message),
		)
		return err
	})
}
