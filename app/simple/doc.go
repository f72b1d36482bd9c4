// Package simple bootstraps a complete waypoint application.
//
// NewApp loads Config from the environment (or takes it through WithConfig),
// builds a JSON-logging slog logger, and creates a router whose middleware
// stack is RequestID, ClientIP, Logging, Tracing, Metrics and RateLimit.
// It registers the liveness, readiness and Prometheus routes; the rate
// limiter keeps its buckets in memory, or in Redis when REDIS_ENABLED is set.
//
//	app, err := simple.NewApp(ctx)
//	if err != nil {
//		return err
//	}
//	app.Router().Get("/users/:id", showUser)
//	return app.Run(ctx)
//
// Run serves until ctx is cancelled and then shuts the server down
// gracefully.
package simple
