// Package cache provides implementations of the published key set cache.
// The cache holds the marshaled JWKS document between mutations so the
// well-known endpoint does not hit the store on every read.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openjwks/jwksd/internal/domain/service"
	"github.com/openjwks/jwksd/pkg/logger"
)

// jwksRedisKey is the single cache slot for the published document.
const jwksRedisKey = "jwksd:published_set"

var _ service.JwksCache = (*RedisJwksCache)(nil)

// RedisJwksCache caches the published key set in Redis, sharing the cached
// document across replicas. Cache failures degrade to store reads, they are
// never surfaced to callers.
type RedisJwksCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisJwksCache creates a Redis-backed JWKS cache with the given TTL.
func NewRedisJwksCache(client redis.UniversalClient, ttl time.Duration, log logger.Logger) *RedisJwksCache {
	return &RedisJwksCache{
		client: client,
		ttl:    ttl,
		logger: log.WithComponent("jwks_cache"),
	}
}

// Get returns the cached document, or false on miss or cache error.
func (c *RedisJwksCache) Get(ctx context.Context) ([]byte, bool) {
	doc, err := c.client.Get(ctx, jwksRedisKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn(ctx, "jwks cache read failed, falling back to store",
				logger.String("error", err.Error()))
		}
		return nil, false
	}
	return doc, true
}

// Set stores the document with the configured TTL.
func (c *RedisJwksCache) Set(ctx context.Context, doc []byte) {
	if err := c.client.Set(ctx, jwksRedisKey, doc, c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "jwks cache write failed",
			logger.String("error", err.Error()))
	}
}

// Invalidate drops the cached document after a mutation.
func (c *RedisJwksCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, jwksRedisKey).Err(); err != nil {
		c.logger.Warn(ctx, "jwks cache invalidation failed",
			logger.String("error", err.Error()))
	}
}
