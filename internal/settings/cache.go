package settings

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const cacheKeySep = "\x00"

// CachedStore is a read-through cache in front of another Store. Cached values
// may be stale for up to the configured TTL.
type CachedStore struct {
	next  Store
	cache *expirable.LRU[string, string]
}

// NewCachedStore wraps next with an LRU cache of at most size entries, each
// living for ttl.
func NewCachedStore(next Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func orgPrefix(platform, orgID string) string {
	return platform + cacheKeySep + orgID + cacheKeySep
}

// Get returns the cached value or asks the wrapped store. Errors are not
// cached.
func (c *CachedStore) Get(ctx context.Context, platform, orgID, key, defaultValue string) (string, error) {
	ck := orgPrefix(platform, orgID) + key + cacheKeySep + defaultValue
	if v, ok := c.cache.Get(ck); ok {
		return v, nil
	}

	v, err := c.next.Get(ctx, platform, orgID, key, defaultValue)
	if err != nil {
		return "", err
	}
	c.cache.Add(ck, v)
	return v, nil
}

// Invalidate drops every cached setting of an organization.
func (c *CachedStore) Invalidate(platform, orgID string) {
	prefix := orgPrefix(platform, orgID)
	for _, k := range c.cache.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Remove(k)
		}
	}
}
