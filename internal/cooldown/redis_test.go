package cooldown

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisClient connects to REDIS_ADDR or skips the test
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func TestRedisLimiter_AcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	rdb := redisClient(t)
	key := "test-" + time.Now().Format("150405.000000000")
	t.Cleanup(func() { rdb.Del(ctx, keyPrefix+key) })

	l := NewRedisLimiter(rdb, 10*time.Second)
	require.NoError(t, l.Acquire(ctx, key))

	err := l.Acquire(ctx, key)
	var wait *WaitError
	require.True(t, errors.As(err, &wait))
	assert.Greater(t, wait.Remaining, time.Duration(0))
	assert.LessOrEqual(t, wait.Seconds(), 10)

	require.NoError(t, l.Release(ctx, key))
	assert.NoError(t, l.Acquire(ctx, key))
}
