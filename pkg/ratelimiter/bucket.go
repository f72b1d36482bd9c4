package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config describes a token bucket.
type Config struct {
	// Capacity is the bucket size and the largest burst allowed.
	Capacity int `env:"RATE_LIMIT_CAPACITY" envDefault:"100"`
	// RefillRate tokens are added every RefillInterval.
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"10"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1s"`
}

// Validate reports whether every field is positive.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive, got %s", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Store keeps bucket state. ConsumeTokens refills the bucket for the time
// elapsed and takes n tokens if enough are available. It returns the tokens
// left; a negative value means the request was denied and the bucket was
// left untouched, and its magnitude is the shortfall. resetAt is when the
// next refill happens.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, n int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// RateLimiter decides whether a key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	AllowN(ctx context.Context, key string, n int) (*Result, error)
}

// Result is the outcome of a single check.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	RetryAt   time.Time
}

// Allowed reports whether the tokens were granted.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is how long to wait before enough tokens are available.
// Zero when the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(0, time.Until(r.RetryAt))
}

// Bucket is a token bucket limiter over a Store.
type Bucket struct {
	store  Store
	config Config
}

// NewBucket validates cfg and returns a limiter backed by store.
func NewBucket(store Store, cfg Config) (*Bucket, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, config: cfg}, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

// AllowN takes n tokens for key. Asking for more than the capacity is an error.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 || n > b.config.Capacity {
		return nil, fmt.Errorf("%w: %d (capacity %d)", ErrInvalidTokenCount, n, b.config.Capacity)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.config)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	res := &Result{
		Limit:     b.config.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if remaining < 0 {
		res.RetryAt = b.retryAt(-remaining, resetAt)
	}
	return res, nil
}

// retryAt is when a shortfall of missing tokens is covered, given that the
// next refill happens at resetAt.
func (b *Bucket) retryAt(missing int, resetAt time.Time) time.Time {
	refills := (missing + b.config.RefillRate - 1) / b.config.RefillRate
	return resetAt.Add(time.Duration(refills-1) * b.config.RefillInterval)
}

// Reset drops the state for key, restoring a full bucket.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}

// refill advances a bucket with the given state to now and returns the new
// token count and refill time. Refill time moves in whole intervals.
func refill(tokens int, refilled, now time.Time, cfg Config) (int, time.Time) {
	elapsed := now.Sub(refilled)
	if elapsed < cfg.RefillInterval {
		return tokens, refilled
	}

	intervals := int64(elapsed / cfg.RefillInterval)
	// Beyond this many intervals the bucket is full anyway.
	if limit := int64(cfg.Capacity/cfg.RefillRate + 1); intervals > limit {
		return cfg.Capacity, now
	}
	tokens = min(tokens+int(intervals)*cfg.RefillRate, cfg.Capacity)
	return tokens, refilled.Add(time.Duration(intervals) * cfg.RefillInterval)
}
