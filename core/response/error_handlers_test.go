package response_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/response"
	"github.com/dmitrymomot/waypoint/core/router"
)

func newRouter(eh handler.ErrorHandler[*router.Context]) router.Router[*router.Context] {
	r := router.New[*router.Context](router.WithErrorHandler(eh))
	r.Get("/items", func(ctx *router.Context) handler.Response {
		return response.String("items")
	})
	r.Get("/conflict", func(ctx *router.Context) handler.Response {
		return response.Error(response.ErrConflict.WithMessage("already exists"))
	})
	r.Get("/partial", func(ctx *router.Context) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusAccepted)
			return response.ErrInternalServerError
		}
	})
	return r
}

func do(h http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestErrorHandlerPlainText(t *testing.T) {
	t.Parallel()

	r := newRouter(response.ErrorHandler[*router.Context])

	w := do(r, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", w.Body.String())

	w = do(r, http.MethodGet, "/conflict")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already exists", w.Body.String())
}

func TestJSONErrorHandler(t *testing.T) {
	t.Parallel()

	r := newRouter(response.JSONErrorHandler[*router.Context])

	t.Run("not found", func(t *testing.T) {
		w := do(r, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

		var body response.HTTPError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "not_found", body.Code)
		assert.Equal(t, "not found", body.Details["cause"])
	})

	t.Run("method not allowed keeps Allow header", func(t *testing.T) {
		w := do(r, http.MethodDelete, "/items")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "GET", w.Header().Get("Allow"))
		assert.Contains(t, w.Body.String(), `"code":"method_not_allowed"`)
	})

	t.Run("written responses are left alone", func(t *testing.T) {
		w := do(r, http.MethodGet, "/partial")
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestHTMLErrorHandler(t *testing.T) {
	t.Parallel()

	t.Run("default page", func(t *testing.T) {
		r := newRouter(response.HTMLErrorHandler[*router.Context](nil))

		w := do(r, http.MethodGet, "/conflict")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "<h1>409</h1>")
		assert.Contains(t, w.Body.String(), "already exists")
	})

	t.Run("custom page", func(t *testing.T) {
		page := func(e response.HTTPError) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				_, err := io.WriteString(w, "oops: "+e.Code)
				return err
			})
		}
		r := newRouter(response.HTMLErrorHandler[*router.Context](page))

		w := do(r, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "oops: not_found", w.Body.String())
	})

	t.Run("escapes message", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := response.DefaultErrorPage(response.ErrBadRequest.WithMessage("<script>")).Render(context.Background(), w)
		require.NoError(t, err)
		assert.NotContains(t, w.Body.String(), "<script>")
	})
}

func TestTempl(t *testing.T) {
	t.Parallel()

	type userKey struct{}
	component := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		name, _ := ctx.Value(userKey{}).(string)
		_, err := io.WriteString(w, "<p>"+name+"</p>")
		return err
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), userKey{}, "ada"))
	w := httptest.NewRecorder()

	require.NoError(t, response.TemplWithStatus(component, http.StatusCreated)(w, req))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "<p>ada</p>", w.Body.String())

	err := response.Templ(nil)(httptest.NewRecorder(), req)
	assert.ErrorIs(t, err, response.ErrInternalServerError)
}
