package loadability

import (
	"context"
	"time"
)

// Identifiable is implemented by cache keys.
// A cache slot is addressed by the key's ID, not by the whole key value:
// two keys sharing an ID are the same slot.
type Identifiable[ID comparable] interface {
	ID() ID
}

// ValueConstraint is an interface for value constraints.
type ValueConstraint interface {
	any
}

// Entry is a cached key-value pair with its expiration time.
type Entry[K any, V ValueConstraint] struct {
	// Key is the key the entry was written with.
	Key K

	// Value is the value associated with the key.
	Value V

	// ExpiresAt is the time after which the entry is stale.
	ExpiresAt time.Time
}

// Store is the backing store of a cache.
// Implementations must be thread-safe and may drop entries at any time (for example under capacity
// pressure or after a retention window). Such out-of-band evictions are reported to the listener
// registered by OnEvict, possibly after a delay.
type Store[ID comparable, E any] interface {
	// Get returns the element stored for id.
	Get(ID) (E, bool)

	// Set stores the element for id, replacing any existing one.
	Set(ID, E)

	// Delete removes the element for id and reports whether it was present.
	// An explicit Delete is not an eviction.
	Delete(ID) bool

	// Clear removes all elements without reporting evictions.
	Clear()

	// Len returns the number of stored elements.
	Len() int

	// OnEvict registers the eviction listener, replacing the previous one.
	// The listener must not block; it may be called from any goroutine, but never while the store holds its own locks.
	OnEvict(func(ID, E))
}

// Fetchable produces a value for a key, usually over the network.
type Fetchable[K any, V ValueConstraint] interface {
	Fetch(context.Context, K) (V, error)
}

// FetchFunc is a function type that implements the Fetchable interface.
type FetchFunc[K any, V ValueConstraint] func(context.Context, K) (V, error)

// Fetch calls the function.
func (f FetchFunc[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	return f(ctx, key)
}

// Cacheable is the capability a caching loader needs from a cache.
// Implementations must be thread-safe.
type Cacheable[K any, V ValueConstraint] interface {
	// Get returns the cached value, even if it is stale.
	Get(K) (V, bool)

	// Set writes the value with the cache's default lifetime.
	Set(K, V)

	// Remove removes the key.
	Remove(K)

	// IsStale reports whether the key is absent or expired.
	IsStale(K) bool
}

// GenericKey is the key of loaders whose value is not keyed by anything.
type GenericKey struct{}

// ID returns the fixed identity shared by all GenericKey values.
func (GenericKey) ID() string {
	return "key"
}

// StringKey is a key identified by its own string value.
type StringKey string

// ID returns the key itself.
func (k StringKey) ID() string {
	return string(k)
}
