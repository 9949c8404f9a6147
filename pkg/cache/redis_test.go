package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := NewRedisCache(context.Background(), NewRedisCacheConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	val, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	require.NoError(t, c.Delete(ctx, "k"))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestRedisCache_Expiration(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestRedisCache_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mr.Close()

	_, err = c.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisCache(context.Background(), NewRedisCacheConfig{Address: addr})
	assert.Error(t, err)
}

func TestNoopCache(t *testing.T) {
	var c Cache = NoopCache{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val)
}
