package health_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/waypoint/core/health"
	"github.com/dmitrymomot/waypoint/core/router"
)

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/live", health.Liveness[*router.Context])

	w := serve(r, http.MethodGet, "/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ALIVE", w.Body.String())
}

func TestNoContent(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Head("/ping", health.NoContent[*router.Context])

	w := serve(r, http.MethodHead, "/ping")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	t.Run("all checks pass", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		ok := func(context.Context) error {
			calls.Add(1)
			return nil
		}

		r := router.New[*router.Context]()
		r.Get("/ready", health.Readiness[*router.Context](nil, ok, ok, ok))

		w := serve(r, http.MethodGet, "/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "READY", w.Body.String())
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/ready", health.Readiness[*router.Context](nil))

		assert.Equal(t, "READY", serve(r, http.MethodGet, "/ready").Body.String())
	})

	t.Run("failing check", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		log := slog.New(slog.NewTextHandler(&logs, nil))
		failing := func(context.Context) error { return errors.New("redis down") }

		r := router.New[*router.Context]()
		r.Get("/ready", health.Readiness[*router.Context](log,
			func(context.Context) error { return nil },
			failing,
		))

		w := serve(r, http.MethodGet, "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "READY")
		assert.Contains(t, logs.String(), "readiness check failed")
		assert.Contains(t, logs.String(), "redis down")
	})
}
