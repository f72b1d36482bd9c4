// Package health provides probe handlers for any router context type.
//
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/health/ready", health.Readiness[*router.Context](
//		log,
//		redis.Healthcheck(client),
//		store.Healthcheck,
//	))
//	r.Head("/ping", health.NoContent[*router.Context])
//
// A dependency check is any func(context.Context) error. Readiness runs
// every check concurrently under the request context and answers 503 when
// one of them fails.
package health
