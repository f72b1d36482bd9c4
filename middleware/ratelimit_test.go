package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/response"
	"github.com/dmitrymomot/waypoint/core/router"
	"github.com/dmitrymomot/waypoint/middleware"
	"github.com/dmitrymomot/waypoint/pkg/ratelimiter"
)

func newLimiter(t *testing.T, capacity int) *ratelimiter.Bucket {
	t.Helper()
	b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity:       capacity,
		RefillRate:     1,
		RefillInterval: time.Minute,
	})
	require.NoError(t, err)
	return b
}

func TestRateLimitShortCircuits(t *testing.T) {
	t.Parallel()

	calls := 0
	r := newRouter(
		middleware.ClientIP[*router.Context](),
		middleware.RateLimit[*router.Context](middleware.RateLimitConfig{
			Limiter:    newLimiter(t, 2),
			SetHeaders: true,
		}),
	)
	r.Get("/", func(ctx *router.Context) handler.Response {
		calls++
		return response.String("ok")
	})

	for i := range 2 {
		w := serve(r, get("/"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(1-i), w.Header().Get("X-RateLimit-Remaining"))
	}

	w := serve(r, get("/"))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retry)
	assert.Contains(t, w.Body.String(), `"code":"too_many_requests"`)
	assert.Equal(t, 2, calls)
}

func TestRateLimitKeysAreIndependent(t *testing.T) {
	t.Parallel()

	r := newRouter(
		middleware.ClientIP[*router.Context](),
		middleware.RateLimit[*router.Context](middleware.RateLimitConfig{Limiter: newLimiter(t, 1)}),
	)
	r.Get("/", ok("ok"))

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := get("/")
		req.RemoteAddr = addr
		assert.Equal(t, http.StatusOK, serve(r, req).Code, addr)
	}

	req := get("/")
	req.RemoteAddr = "10.0.0.1:2"
	w := serve(r, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitCustomKeyAndErrorHandler(t *testing.T) {
	t.Parallel()

	r := newRouter(middleware.RateLimit[*router.Context](middleware.RateLimitConfig{
		Limiter: newLimiter(t, 1),
		KeyExtractor: func(ctx handler.Context) string {
			return ctx.Request().Header.Get("X-API-Key")
		},
		ErrorHandler: func(ctx handler.Context, result *ratelimiter.Result) handler.Response {
			return response.StringWithStatus("slow down", http.StatusTooManyRequests)
		},
	}))
	r.Get("/", ok("ok"))

	req := func() *http.Request {
		req := get("/")
		req.Header.Set("X-API-Key", "k1")
		return req
	}
	serve(r, req())
	w := serve(r, req())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "slow down", w.Body.String())
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (*ratelimiter.Result, error) {
	return nil, errors.New("store down")
}

func (brokenLimiter) AllowN(context.Context, string, int) (*ratelimiter.Result, error) {
	return nil, errors.New("store down")
}

func TestRateLimitStoreFailure(t *testing.T) {
	t.Parallel()

	r := newRouter(middleware.RateLimit[*router.Context](middleware.RateLimitConfig{Limiter: brokenLimiter{}}))
	r.Get("/", ok("ok"))

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, get("/")).Code)
}

func TestRateLimitRequiresLimiter(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		middleware.RateLimit[*router.Context](middleware.RateLimitConfig{})
	})
}
