package health

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/response"
)

// Readiness answers "READY" when every check passes and 503 otherwise.
// Checks run concurrently; the first failure cancels the rest.
func Readiness[C handler.Context](log *slog.Logger, checks ...func(context.Context) error) handler.HandlerFunc[C] {
	if log == nil {
		log = logger.Nop()
	}

	return func(ctx C) handler.Response {
		g, gctx := errgroup.WithContext(ctx)
		for _, check := range checks {
			g.Go(func() error { return check(gctx) })
		}

		if err := g.Wait(); err != nil {
			log.ErrorContext(ctx, "readiness check failed",
				logger.Component("health"),
				logger.Error(err),
			)
			return response.Error(response.ErrServiceUnavailable)
		}

		return response.String("READY")
	}
}
