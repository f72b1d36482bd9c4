package ratelimiter_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/pkg/ratelimiter"
)

func redisClient(t *testing.T) redis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestRedisStore(t *testing.T) {
	client := redisClient(t)
	prefix := "test:" + uuid.NewString() + ":"
	store := ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix(prefix))
	ctx := context.Background()

	b, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute})
	require.NoError(t, err)

	for range 2 {
		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	}

	res, err := b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Positive(t, res.RetryAfter())

	ttl, err := client.PTTL(ctx, prefix+"k").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	require.NoError(t, b.Reset(ctx, "k"))
	res, err = b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestRedisStoreRejectsSubMillisecondInterval(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewRedisStore(nil)
	_, _, err := store.ConsumeTokens(context.Background(), "k", 1, ratelimiter.Config{
		Capacity: 1, RefillRate: 1, RefillInterval: time.Microsecond,
	})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}
