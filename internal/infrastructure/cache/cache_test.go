package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openjwks/jwksd/internal/domain/service"
	"github.com/openjwks/jwksd/pkg/logger"
)

func newRedisCache(t *testing.T) (*RedisJwksCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisJwksCache(client, time.Minute, logger.NewNoopLogger()), mr
}

func runCacheContract(t *testing.T, c service.JwksCache) {
	ctx := context.Background()
	doc := []byte(`{"keys":[]}`)

	_, ok := c.Get(ctx)
	assert.False(t, ok, "empty cache must miss")

	c.Set(ctx, doc)
	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, doc, got)

	c.Invalidate(ctx)
	_, ok = c.Get(ctx)
	assert.False(t, ok, "invalidated cache must miss")

	// Invalidating an empty cache is harmless.
	c.Invalidate(ctx)
}

func TestMemoryJwksCache(t *testing.T) {
	runCacheContract(t, NewMemoryJwksCache(time.Minute))
}

func TestRedisJwksCache(t *testing.T) {
	c, _ := newRedisCache(t)
	runCacheContract(t, c)
}

func TestRedisJwksCacheTTL(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	c.Set(ctx, []byte(`{"keys":[]}`))

	mr.FastForward(2 * time.Minute)
	_, ok := c.Get(ctx)
	assert.False(t, ok, "document must expire with its TTL")
}

func TestRedisJwksCacheDegradesWhenUnavailable(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	mr.Close()

	// With the backend gone every operation degrades to a miss instead of
	// surfacing an error.
	_, ok := c.Get(ctx)
	assert.False(t, ok)
	c.Set(ctx, []byte(`{"keys":[]}`))
	c.Invalidate(ctx)
}

func TestMemoryJwksCacheExpiry(t *testing.T) {
	c := NewMemoryJwksCache(10 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, []byte(`{"keys":[]}`))
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(ctx)
	assert.False(t, ok)
}
