// Package middleware provides handler.Middleware implementations for the
// router.
//
// Every middleware is generic over the handler context type and can be
// registered on any router:
//
//	r := router.New[*router.Context]()
//	r.Use(
//		middleware.RequestID[*router.Context](),
//		middleware.ClientIP[*router.Context](),
//		middleware.LoggingWithLogger[*router.Context](log),
//		middleware.Tracing[*router.Context](middleware.TracingConfig{}),
//		middleware.Metrics[*router.Context](middleware.MetricsConfig{Registry: reg}),
//	)
//	r.With(middleware.BasicAuth[*router.Context](authCfg)).Get("/admin", admin)
//
// Middleware only runs for requests that resolved to a handler, so
// router.RoutePattern is always set; Logging, Metrics and Tracing use it as
// a low cardinality route label.
//
// RateLimit and BasicAuth short-circuit: a rejected request never reaches the
// inner chain. Their rejections are returned as response.HTTPError values and
// rendered by the router's error handler.
//
// Logging, Metrics and Tracing observe the response while it is rendered.
// When a handler returns an error without writing, the reported status is the
// one the error maps to via response.AsHTTPError.
package middleware
