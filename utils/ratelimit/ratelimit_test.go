package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestWindowLimiter_Allow(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewWindowLimiter(client, zap.NewNop(), false)

	ctx := context.Background()
	key := "notify:group:123"
	limit := 5
	window := time.Minute

	for i := 0; i < limit; i++ {
		allowed, err := limiter.Allow(ctx, key, limit, window)
		assert.NoError(t, err)
		assert.True(t, allowed, "event %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, key, limit, window)
	assert.NoError(t, err)
	assert.False(t, allowed, "event should be denied after limit exceeded")
}

func TestWindowLimiter_IndependentKeys(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewWindowLimiter(client, zap.NewNop(), false)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "notify:group:1", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)

	// group:1 exhausted, group:2 unaffected
	allowed, err = limiter.Allow(ctx, "notify:group:1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "notify:group:2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestWindowLimiter_GetRemaining(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewWindowLimiter(client, zap.NewNop(), false)
	ctx := context.Background()

	remaining, err := limiter.GetRemaining(ctx, "notify:group:9", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	_, err = limiter.Allow(ctx, "notify:group:9", 5, time.Minute)
	require.NoError(t, err)

	remaining, err = limiter.GetRemaining(ctx, "notify:group:9", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
}

func TestWindowLimiter_Reset(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	limiter := NewWindowLimiter(client, zap.NewNop(), false)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "notify:group:7", 3, time.Minute)
		require.NoError(t, err)
	}

	allowed, err := limiter.Allow(ctx, "notify:group:7", 3, time.Minute)
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "notify:group:7"))

	allowed, err = limiter.Allow(ctx, "notify:group:7", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestWindowLimiter_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()

	limiter := NewWindowLimiter(client, zap.NewNop(), true)
	ctx := context.Background()

	mr.Close() // simulate redis outage

	allowed, err := limiter.Allow(ctx, "notify:group:1", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed, "fail-open limiter must allow on outage")
}

func TestWindowLimiter_FailClosed(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()

	limiter := NewWindowLimiter(client, zap.NewNop(), false)
	ctx := context.Background()

	mr.Close()

	allowed, err := limiter.Allow(ctx, "notify:group:1", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}
