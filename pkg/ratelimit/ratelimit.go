package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter grants one action per key per window using Redis SETNX.
// A nil Redis client or a zero window disables limiting.
type Limiter struct {
	rdb    *redis.Client
	window time.Duration
}

func New(rdb *redis.Client, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, window: window}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.rdb != nil && l.window > 0
}

// Allow records the action and reports whether it was permitted.
func (l *Limiter) Allow(ctx context.Context, userID uint, action string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, action), "locked", l.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// Retry reports how long until the action is allowed again.
func (l *Limiter) Retry(ctx context.Context, userID uint, action string) (time.Duration, error) {
	if !l.Enabled() {
		return 0, nil
	}
	return l.rdb.TTL(ctx, key(userID, action)).Result()
}

// Clear lifts the limit, used when the limited action failed and should not count.
func (l *Limiter) Clear(ctx context.Context, userID uint, action string) error {
	if !l.Enabled() {
		return nil
	}
	_, err := l.rdb.Del(ctx, key(userID, action)).Result()
	return err
}

func key(userID uint, action string) string {
	return fmt.Sprintf("rate_limit:user:%d:%s", userID, action)
}
