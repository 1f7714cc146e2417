package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cooldown:"

// redisLimiter shares cool-downs between server replicas.
// A key exists exactly while its viewer is cooling down.
type redisLimiter struct {
	rdb    redis.UniversalClient
	window time.Duration
}

// NewRedisLimiter creates a Limiter that stores one expiring key per viewer
func NewRedisLimiter(rdb redis.UniversalClient, window time.Duration) Limiter {
	return &redisLimiter{rdb: rdb, window: window}
}

func (l *redisLimiter) Acquire(ctx context.Context, key string) error {
	if l.window <= 0 {
		return nil
	}

	ok, err := l.rdb.SetNX(ctx, keyPrefix+key, time.Now().UnixMilli(), l.window).Result()
	if err != nil {
		return fmt.Errorf("cooldown acquire: %w", err)
	}
	if ok {
		return nil
	}

	ttl, err := l.rdb.PTTL(ctx, keyPrefix+key).Result()
	if err != nil {
		return fmt.Errorf("cooldown ttl: %w", err)
	}
	switch {
	case ttl > 0:
		return &WaitError{Remaining: ttl}
	case ttl == -2:
		// The key expired between SETNX and PTTL
		ok, err = l.rdb.SetNX(ctx, keyPrefix+key, time.Now().UnixMilli(), l.window).Result()
		if err != nil {
			return fmt.Errorf("cooldown acquire: %w", err)
		}
		if ok {
			return nil
		}
	}
	return &WaitError{Remaining: l.window}
}

func (l *redisLimiter) Release(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("cooldown release: %w", err)
	}
	return nil
}
