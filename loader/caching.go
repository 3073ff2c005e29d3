package loader

import (
	"context"

	"github.com/karupanerura/loadability"
)

// CachingEngine is an Engine serving fresh values from a cache and writing fetched values through to it.
type CachingEngine[K any, V loadability.ValueConstraint] struct {
	*Engine[K, V]
	cache loadability.Cacheable[K, V]
}

// NewCaching creates an idle engine fetching through fetcher and caching in cache.
// The write-through runs before any hook given by WithLoadCompleted.
func NewCaching[K any, V loadability.ValueConstraint](fetcher loadability.Fetchable[K, V], cache loadability.Cacheable[K, V], opts ...Option[K, V]) *CachingEngine[K, V] {
	opts = append([]Option[K, V]{
		WithLoadCompleted(func(key K, value V) {
			cache.Set(key, value)
		}),
	}, opts...)
	return &CachingEngine[K, V]{
		Engine: New(fetcher, opts...),
		cache:  cache,
	}
}

// Load publishes the cached value for key when it is fresh. Otherwise it fetches, or joins the
// fetch in flight, and writes the fetched value to the cache.
func (e *CachingEngine[K, V]) Load(ctx context.Context, key K) (V, error) {
	return e.load(ctx, key, e.lookup)
}

// Refresh removes key from the cache, clears the published object and fetches unconditionally.
// If a fetch is already in flight, Refresh joins it and touches neither the cache nor the object.
func (e *CachingEngine[K, V]) Refresh(ctx context.Context, key K) (V, error) {
	return e.refresh(ctx, key, e.cache.Remove)
}

// IsStale reports whether the cache has no fresh value for key.
func (e *CachingEngine[K, V]) IsStale(key K) bool {
	return e.cache.IsStale(key)
}

func (e *CachingEngine[K, V]) lookup(key K) (V, bool) {
	if e.cache.IsStale(key) {
		var zero V
		return zero, false
	}
	return e.cache.Get(key)
}
