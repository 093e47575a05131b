package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter defines the interface for rate limiting operations.
// It throttles alert notification delivery per group so a burst of
// triggers cannot flood the owner channel.
type Limiter interface {
	// Allow checks if one event should be allowed under the limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error

	// GetRemaining returns the remaining budget in the current window.
	GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// WindowLimiter implements fixed-window rate limiting on Redis INCR.
// Counters are shared across instances, so rate limits hold even when
// several engine processes consume the same groups.
type WindowLimiter struct {
	redisClient *redis.Client
	logger      *zap.Logger
	failOpen    bool // allow events when Redis is unavailable
}

// NewWindowLimiter creates a Redis-backed fixed-window limiter.
// With failOpen set, Redis outages let events through instead of
// silencing notifications entirely.
func NewWindowLimiter(redisClient *redis.Client, logger *zap.Logger, failOpen bool) *WindowLimiter {
	return &WindowLimiter{
		redisClient: redisClient,
		logger:      logger,
		failOpen:    failOpen,
	}
}

// Allow checks if one event fits the window budget for key.
func (l *WindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	bucketKey := l.bucketKey(key, now, window)

	pipe := l.redisClient.Pipeline()
	incrCmd := pipe.Incr(ctx, bucketKey)
	pipe.Expire(ctx, bucketKey, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("rate limit check failed",
			zap.String("key", bucketKey),
			zap.Error(err),
		)
		if l.failOpen {
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := incrCmd.Val()
	allowed := count <= int64(limit)
	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit),
			zap.Duration("window", window),
		)
	}
	return allowed, nil
}

// Reset clears current and previous window counters for a key.
func (l *WindowLimiter) Reset(ctx context.Context, key string) error {
	now := time.Now()
	windows := []time.Duration{time.Minute, time.Hour, 24 * time.Hour}

	var keys []string
	for _, window := range windows {
		keys = append(keys, l.bucketKey(key, now, window))
		keys = append(keys, l.bucketKey(key, now.Add(-window), window))
	}

	if err := l.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit for key %s: %w", key, err)
	}
	return nil
}

// GetRemaining returns the remaining budget in the current window.
func (l *WindowLimiter) GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	bucketKey := l.bucketKey(key, time.Now(), window)

	count, err := l.redisClient.Get(ctx, bucketKey).Int64()
	if err != nil {
		if err == redis.Nil {
			return limit, nil
		}
		return 0, fmt.Errorf("failed to get remaining budget: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// bucketKey derives the fixed-window bucket key for a point in time.
func (l *WindowLimiter) bucketKey(key string, now time.Time, window time.Duration) string {
	seconds := int64(window.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("ratelimit:%s:%d", key, now.Unix()/seconds)
}
