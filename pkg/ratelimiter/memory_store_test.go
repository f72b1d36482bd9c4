package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/waypoint/pkg/ratelimiter"
)

func TestMemoryStoreRemoveStale(t *testing.T) {
	t.Parallel()

	clk := newClock()
	ms := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clk.Now), ratelimiter.WithStaleAfter(time.Minute))
	cfg := ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second}
	ctx := context.Background()

	_, _, err := ms.ConsumeTokens(ctx, "old", 1, cfg)
	require.NoError(t, err)
	clk.Advance(2 * time.Minute)
	_, _, err = ms.ConsumeTokens(ctx, "fresh", 1, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, ms.RemoveStale())

	stats := ms.Stats()
	assert.Equal(t, int64(2), stats.BucketsCreated)
	assert.Equal(t, int64(1), stats.BucketsRemoved)
	assert.Equal(t, 1, stats.ActiveBuckets)
}

func TestMemoryStoreRun(t *testing.T) {
	t.Parallel()

	ms := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(10 * time.Millisecond))
	assert.Error(t, ms.Healthcheck(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(ms.Run(gctx))

	require.Eventually(t, func() bool { return ms.Stats().IsRunning }, time.Second, 5*time.Millisecond)
	assert.NoError(t, ms.Healthcheck(context.Background()))
	assert.ErrorIs(t, ms.Run(ctx)(), ratelimiter.ErrAlreadyRunning)

	cancel()
	require.NoError(t, g.Wait())
	assert.False(t, ms.Stats().IsRunning)
}

func TestMemoryStoreRunRequiresInterval(t *testing.T) {
	t.Parallel()

	ms := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))

	assert.ErrorIs(t, ms.Run(context.Background())(), ratelimiter.ErrInvalidConfig)
	assert.NoError(t, ms.Healthcheck(context.Background()))
}
