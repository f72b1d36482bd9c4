// Package redis connects to Redis with go-redis, retrying until the server
// answers a ping.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// The client backs the distributed rate limiter store:
//
//	store := ratelimiter.NewRedisStore(client)
//
// Healthcheck wraps Ping for readiness probes. Errors wrap
// ErrFailedToParseRedisConnString, ErrRedisNotReady, ErrEmptyConnectionURL or
// ErrHealthcheckFailed and can be matched with errors.Is.
//
// Both redis:// and rediss:// (TLS) URLs are accepted.
package redis
