package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/openjwks/jwksd/internal/domain/service"
)

var _ service.JwksCache = (*MemoryJwksCache)(nil)

// MemoryJwksCache caches the published key set in process memory. Used when
// no Redis is configured, which covers single-replica deployments and tests.
type MemoryJwksCache struct {
	store *gocache.Cache
}

// NewMemoryJwksCache creates an in-process JWKS cache with the given TTL.
func NewMemoryJwksCache(ttl time.Duration) *MemoryJwksCache {
	return &MemoryJwksCache{
		store: gocache.New(ttl, 2*ttl),
	}
}

// Get returns the cached document, or false on miss.
func (c *MemoryJwksCache) Get(_ context.Context) ([]byte, bool) {
	v, ok := c.store.Get(jwksRedisKey)
	if !ok {
		return nil, false
	}
	doc, ok := v.([]byte)
	return doc, ok
}

// Set stores the document until the TTL elapses or a mutation invalidates it.
func (c *MemoryJwksCache) Set(_ context.Context, doc []byte) {
	c.store.Set(jwksRedisKey, doc, gocache.DefaultExpiration)
}

// Invalidate drops the cached document.
func (c *MemoryJwksCache) Invalidate(_ context.Context) {
	c.store.Delete(jwksRedisKey)
}
