// Package ttlcache provides an in-memory cache whose entries carry an expiration time.
//
// Reads never hide stale entries: Get returns whatever is stored and IsStale answers separately,
// so callers can serve stale data while revalidating it. The backing store may drop entries at
// any time, so a Get right after a Set may miss.
package ttlcache

import (
	"time"

	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/storage/memstorage"
)

// Cache is a goroutine-safe cache of values with per-entry expiration.
// Entries are addressed by the ID of their key.
type Cache[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint] struct {
	store   loadability.Store[ID, *loadability.Entry[K, V]]
	options options[ID, K, V]
}

var _ loadability.Cacheable[loadability.StringKey, struct{}] = (*Cache[string, loadability.StringKey, struct{}])(nil)

// New creates a new cache backed by an in-memory store unless WithStore is given.
func New[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](opts ...Option[ID, K, V]) *Cache[ID, K, V] {
	options := defaultOptions[ID, K, V]()
	for _, opt := range opts {
		opt.apply(&options)
	}

	store := options.store
	if store == nil {
		store = memstorage.NewInMemoryStorage[ID, *loadability.Entry[K, V]]()
	}
	return &Cache[ID, K, V]{
		store:   store,
		options: options,
	}
}

// Get returns the value stored for key, even when it is stale.
func (c *Cache[ID, K, V]) Get(key K) (V, bool) {
	e, ok := c.store.Get(key.ID())
	if !ok {
		var zero V
		return zero, false
	}
	return c.options.cloner.CloneValue(e.Value), true
}

// Entry returns the stored entry for key, even when it is stale.
func (c *Cache[ID, K, V]) Entry(key K) (loadability.Entry[K, V], bool) {
	e, ok := c.store.Get(key.ID())
	if !ok {
		return loadability.Entry[K, V]{}, false
	}
	return loadability.Entry[K, V]{
		Key:       e.Key,
		Value:     c.options.cloner.CloneValue(e.Value),
		ExpiresAt: e.ExpiresAt,
	}, true
}

// Set stores value for key, expiring after the cache lifetime.
func (c *Cache[ID, K, V]) Set(key K, value V) {
	c.SetWithExpiration(key, value, c.options.clock.Now().Add(c.options.lifetime))
}

// SetWithExpiration stores value for key, expiring at expiresAt.
func (c *Cache[ID, K, V]) SetWithExpiration(key K, value V, expiresAt time.Time) {
	c.store.Set(key.ID(), &loadability.Entry[K, V]{
		Key:       key,
		Value:     c.options.cloner.CloneValue(value),
		ExpiresAt: expiresAt,
	})
}

// Remove removes the entry for key.
func (c *Cache[ID, K, V]) Remove(key K) {
	c.Delete(key)
}

// Delete removes the entry for key and reports whether it was present.
func (c *Cache[ID, K, V]) Delete(key K) bool {
	return c.store.Delete(key.ID())
}

// Clear removes every entry.
func (c *Cache[ID, K, V]) Clear() {
	c.store.Clear()
}

// IsStale reports whether key is absent or its entry is stale under the cache policy.
func (c *Cache[ID, K, V]) IsStale(key K) bool {
	e, ok := c.store.Get(key.ID())
	if !ok {
		return true
	}
	return c.options.policy.IsStale(c.options.clock.Now(), e.ExpiresAt)
}

// Contains reports whether an entry for the given identity is stored.
func (c *Cache[ID, K, V]) Contains(id ID) bool {
	_, ok := c.store.Get(id)
	return ok
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache[ID, K, V]) Len() int {
	return c.store.Len()
}

// Lifetime returns the lifetime applied by Set.
func (c *Cache[ID, K, V]) Lifetime() time.Duration {
	return c.options.lifetime
}

// OnEvict registers f to be called with the key of every entry the backing store drops on its own.
// Remove, Delete and Clear are not evictions.
func (c *Cache[ID, K, V]) OnEvict(f func(ID, K)) {
	c.store.OnEvict(func(id ID, e *loadability.Entry[K, V]) {
		f(id, e.Key)
	})
}
