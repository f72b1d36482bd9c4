// Package logger builds slog loggers and provides attribute helpers with
// stable keys.
//
//	log := logger.New(
//		logger.WithProduction("api"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//
//	log.InfoContext(ctx, "request completed",
//		logger.Method(r.Method),
//		logger.Route(router.RoutePattern(ctx)),
//		logger.StatusCode(status),
//		logger.Duration(time.Since(start)),
//	)
//
// Helpers for optional values (Error, RequestID, Route, ...) return an empty
// attribute when the value is missing, which slog omits from the output.
package logger
