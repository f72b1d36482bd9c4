// Package ratelimiter implements token bucket rate limiting over pluggable
// stores.
//
// A bucket holds up to Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request takes one or more tokens; a request that
// cannot be covered is denied and takes nothing.
//
//	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       100,
//		RefillRate:     10,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := limiter.Allow(ctx, clientIP)
//	if err != nil {
//		return err
//	}
//	if !res.Allowed() {
//		// retry after res.RetryAfter()
//	}
//
// # Stores
//
// MemoryStore suits a single instance. Its Run method sweeps idle buckets and
// plugs into an errgroup. RedisStore runs the refill and consume steps in a
// Lua script so several instances share one budget per key.
//
// Store errors are wrapped with ErrStoreUnavailable; context errors are
// returned as is.
package ratelimiter
