package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/waypoint/core/logger"
)

type memoryBucket struct {
	tokens     int
	refilled   time.Time
	lastAccess time.Time
}

// MemoryStore keeps buckets in process memory. Run removes buckets idle for
// longer than the stale threshold.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket

	cleanupInterval time.Duration
	staleAfter      time.Duration
	logger          *slog.Logger
	now             func() time.Time

	running atomic.Bool
	created atomic.Int64
	removed atomic.Int64
}

// MemoryStoreStats is a snapshot for health and debugging endpoints.
type MemoryStoreStats struct {
	BucketsCreated int64
	BucketsRemoved int64
	ActiveBuckets  int
	IsRunning      bool
}

type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often stale buckets are swept.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

// WithStaleAfter sets how long a bucket may go unused before it is swept.
func WithStaleAfter(d time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if d > 0 {
			ms.staleAfter = d
		}
	}
}

func WithMemoryStoreLogger(log *slog.Logger) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if log != nil {
			ms.logger = log
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets:         make(map[string]*memoryBucket),
		cleanupInterval: 5 * time.Minute,
		staleAfter:      time.Hour,
		logger:          logger.Nop(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, n int, cfg Config) (int, time.Time, error) {
	now := ms.now()

	ms.mu.Lock()
	defer ms.mu.Unlock()

	b, ok := ms.buckets[key]
	if !ok {
		b = &memoryBucket{tokens: cfg.Capacity, refilled: now}
		ms.buckets[key] = b
		ms.created.Add(1)
	}

	b.tokens, b.refilled = refill(b.tokens, b.refilled, now, cfg)
	b.lastAccess = now

	remaining := b.tokens - n
	if remaining >= 0 {
		b.tokens = remaining
	}
	return remaining, b.refilled.Add(cfg.RefillInterval), nil
}

func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	delete(ms.buckets, key)
	ms.mu.Unlock()
	return nil
}

// Run returns an errgroup-compatible function that sweeps stale buckets
// until ctx is cancelled.
func (ms *MemoryStore) Run(ctx context.Context) func() error {
	return func() error {
		if ms.cleanupInterval <= 0 {
			return errors.Join(ErrInvalidConfig, errors.New("cleanup interval must be positive"))
		}
		if !ms.running.CompareAndSwap(false, true) {
			return ErrAlreadyRunning
		}
		defer ms.running.Store(false)

		ms.logger.InfoContext(ctx, "rate limiter cleanup started",
			logger.Component("ratelimiter"),
			logger.Duration(ms.cleanupInterval),
		)

		ticker := time.NewTicker(ms.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				ms.logger.InfoContext(context.WithoutCancel(ctx), "rate limiter cleanup stopped",
					logger.Component("ratelimiter"))
				return nil
			case <-ticker.C:
				if n := ms.RemoveStale(); n > 0 {
					ms.logger.DebugContext(ctx, "removed stale rate limit buckets",
						logger.Component("ratelimiter"),
						slog.Int("count", n),
					)
				}
			}
		}
	}
}

// RemoveStale deletes buckets idle longer than the stale threshold and
// returns how many were removed.
func (ms *MemoryStore) RemoveStale() int {
	now := ms.now()

	ms.mu.Lock()
	defer ms.mu.Unlock()

	removed := 0
	for key, b := range ms.buckets {
		if now.Sub(b.lastAccess) > ms.staleAfter {
			delete(ms.buckets, key)
			removed++
		}
	}
	ms.removed.Add(int64(removed))
	return removed
}

func (ms *MemoryStore) Stats() MemoryStoreStats {
	ms.mu.Lock()
	active := len(ms.buckets)
	ms.mu.Unlock()

	return MemoryStoreStats{
		BucketsCreated: ms.created.Load(),
		BucketsRemoved: ms.removed.Load(),
		ActiveBuckets:  active,
		IsRunning:      ms.running.Load(),
	}
}

// Healthcheck fails when cleanup is configured but Run is not active.
func (ms *MemoryStore) Healthcheck(context.Context) error {
	if ms.cleanupInterval > 0 && !ms.running.Load() {
		return errors.Join(ErrStoreUnavailable, errors.New("cleanup is configured but not running"))
	}
	return nil
}
