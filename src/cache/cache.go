// Package cache memoizes full investigation payloads by a fingerprint of the
// normalized input. Entries are stored as opaque bytes and returned
// bit-identical; expiry is enforced by the store, not polled by callers.
package cache

import (
	"context"
	"log"
	"time"
)

// DefaultTTL is how long an investigation result stays valid.
const DefaultTTL = time.Hour

// Store is one cache backend. Get reports a miss with ok=false; errors are
// backend failures, which callers treat as misses.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache wraps a store with the service TTL and fail-open semantics: a broken
// backend degrades to "always miss", never to a request failure.
type Cache struct {
	store Store
	ttl   time.Duration
}

func New(store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: store, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, fingerprint string) ([]byte, bool) {
	value, ok, err := c.store.Get(ctx, fingerprint)
	if err != nil {
		log.Printf("cache: get %s: %v", fingerprint, err)
		return nil, false
	}
	return value, ok
}

func (c *Cache) Put(ctx context.Context, fingerprint string, value []byte) {
	if err := c.store.Set(ctx, fingerprint, value, c.ttl); err != nil {
		log.Printf("cache: put %s: %v", fingerprint, err)
	}
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
