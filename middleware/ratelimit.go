package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/response"
	"github.com/dmitrymomot/waypoint/pkg/ratelimiter"
)

type RateLimitConfig struct {
	Skip    func(ctx handler.Context) bool
	Limiter ratelimiter.RateLimiter
	// KeyExtractor defaults to the client IP, then RemoteAddr.
	KeyExtractor func(ctx handler.Context) string
	// ErrorHandler builds the rejection. Default: 429 with retry_after details.
	ErrorHandler func(ctx handler.Context, result *ratelimiter.Result) handler.Response
	// SetHeaders adds X-RateLimit-* headers to every response.
	SetHeaders bool
}

// RateLimit takes a token per request. Rejected requests never reach the
// inner middleware or the handler, and always carry Retry-After.
func RateLimit[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = func(ctx handler.Context) string {
			if ip, ok := GetClientIP(ctx); ok {
				return ip
			}
			return ctx.Request().RemoteAddr
		}
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx handler.Context, result *ratelimiter.Result) handler.Response {
			return response.Error(response.ErrTooManyRequests.WithDetails(map[string]any{
				"retry_after": retryAfterSeconds(result),
			}))
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			result, err := cfg.Limiter.Allow(ctx, cfg.KeyExtractor(ctx))
			if err != nil {
				return response.Error(response.ErrServiceUnavailable.WithError(err))
			}

			if !result.Allowed() {
				resp := cfg.ErrorHandler(ctx, result)
				return func(w http.ResponseWriter, r *http.Request) error {
					if cfg.SetHeaders {
						setRateLimitHeaders(w, result)
					}
					w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(result)))
					return resp(w, r)
				}
			}

			resp := next(ctx)
			if resp == nil || !cfg.SetHeaders {
				return resp
			}
			return func(w http.ResponseWriter, r *http.Request) error {
				setRateLimitHeaders(w, result)
				return resp(w, r)
			}
		}
	}
}

func setRateLimitHeaders(w http.ResponseWriter, result *ratelimiter.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// retryAfterSeconds rounds up and never returns less than one second.
func retryAfterSeconds(result *ratelimiter.Result) int {
	return max(1, int(math.Ceil(result.RetryAfter().Seconds())))
}
