package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/response"
	"github.com/dmitrymomot/waypoint/core/router"
)

type mw = handler.Middleware[*router.Context]

func newRouter(mws ...mw) router.Router[*router.Context] {
	r := router.New[*router.Context](router.WithErrorHandler(response.JSONErrorHandler[*router.Context]))
	r.Use(mws...)
	return r
}

func ok(body string) handler.HandlerFunc[*router.Context] {
	return func(ctx *router.Context) handler.Response {
		return response.String(body)
	}
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
