// Package dedup maps content fingerprints to completed review ids
package dedup

import (
	"context"
	"time"

	"critiq/internal/platform/store"
)

// DefaultScope is the shared cache namespace used when no scoping applies
const DefaultScope = "public"

// Cache is the fingerprint -> review id mapping.
//
// Keys are scoped (`codehash:<scope>:<hash>`) so per-user or per-org scoping
// can land later without invalidating anything. Reads fall back to the
// legacy unscoped key (`codehash:<hash>`) written before scoping existed;
// no read-repair happens, old entries stay readable until they expire.
type Cache struct {
	kv    store.KV
	ttl   time.Duration
	scope string
}

// New constructs a Cache with the given default ttl and scope
func New(kv store.KV, ttl time.Duration, scope string) *Cache {
	if kv == nil {
		panic("dedup requires a non nil KV")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if scope == "" {
		scope = DefaultScope
	}
	return &Cache{kv: kv, ttl: ttl, scope: scope}
}

// Lookup returns the cached review id for hash; ok=false on a miss
func (c *Cache) Lookup(ctx context.Context, hash string) (string, bool, error) {
	id, ok, err := c.kv.Get(ctx, "codehash:"+c.scope+":"+hash)
	if err != nil || ok {
		return id, ok, err
	}
	return c.kv.Get(ctx, "codehash:"+hash)
}

// Store records reviewID for hash under the scoped key only.
// Entries are immutable until expiry; there is no invalidation path
func (c *Cache) Store(ctx context.Context, hash, reviewID string) error {
	return c.kv.Set(ctx, "codehash:"+c.scope+":"+hash, reviewID, c.ttl)
}
