package shared

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/golang/glog"
	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/persistent"
)

// Facade is the shared persistent cache of one key and value type pair.
// Mutations from concurrent callers are serialized.
type Facade[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint] struct {
	name string
	opts []persistent.Option[ID, K, V]

	once  sync.Once
	cache atomic.Pointer[persistent.Cache[ID, K, V]]

	mu sync.RWMutex
}

var _ loadability.Cacheable[loadability.StringKey, struct{}] = (*Facade[string, loadability.StringKey, struct{}])(nil)

// Open returns the facade of the (K, V) pair, registering it under name on first call.
// Later calls return the same facade whatever name and options they pass.
func Open[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](r *Registry, name string, opts ...persistent.Option[ID, K, V]) *Facade[ID, K, V] {
	pair := typePair{
		key:   reflect.TypeOf((*K)(nil)),
		value: reflect.TypeOf((*V)(nil)),
	}

	r.mu.RLock()
	m, ok := r.members[pair]
	r.mu.RUnlock()
	if !ok {
		r.mu.Lock()
		m, ok = r.members[pair]
		if !ok {
			m = newFacade(r, name, opts)
			r.members[pair] = m
		}
		r.mu.Unlock()
	}

	f := m.(*Facade[ID, K, V])
	if ok && f.name != name {
		glog.Warningf("loadability: cache for %s is already open as %q, ignoring name %q", pair, f.name, name)
	}
	return f
}

func newFacade[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](r *Registry, name string, opts []persistent.Option[ID, K, V]) *Facade[ID, K, V] {
	all := []persistent.Option[ID, K, V]{
		persistent.WithBackend[ID, K, V](r.options.backend),
		persistent.WithErrorHandler[ID, K, V](r.options.onError),
	}
	return &Facade[ID, K, V]{
		name: name,
		opts: append(all, opts...),
	}
}

func (f *Facade[ID, K, V]) get() *persistent.Cache[ID, K, V] {
	f.once.Do(func() {
		f.cache.Store(persistent.Load(context.Background(), f.name, f.opts...))
	})
	return f.cache.Load()
}

// Name returns the name the cache is persisted under.
func (f *Facade[ID, K, V]) Name() string {
	return f.name
}

// Loaded reports whether the cache has been loaded.
func (f *Facade[ID, K, V]) Loaded() bool {
	return f.cache.Load() != nil
}

// Get returns the value stored for key, even when it is stale. The first call loads the cache.
func (f *Facade[ID, K, V]) Get(key K) (V, bool) {
	c := f.get()
	f.mu.RLock()
	defer f.mu.RUnlock()
	return c.Get(key)
}

// Entry returns the stored entry for key, even when it is stale.
func (f *Facade[ID, K, V]) Entry(key K) (loadability.Entry[K, V], bool) {
	c := f.get()
	f.mu.RLock()
	defer f.mu.RUnlock()
	return c.Entry(key)
}

// IsStale reports whether key is absent or its entry is stale.
func (f *Facade[ID, K, V]) IsStale(key K) bool {
	c := f.get()
	f.mu.RLock()
	defer f.mu.RUnlock()
	return c.IsStale(key)
}

// Len returns the number of stored entries.
func (f *Facade[ID, K, V]) Len() int {
	c := f.get()
	f.mu.RLock()
	defer f.mu.RUnlock()
	return c.Len()
}

// Set stores value for key with the cache lifetime and schedules a snapshot write.
func (f *Facade[ID, K, V]) Set(key K, value V) {
	c := f.get()
	f.mu.Lock()
	defer f.mu.Unlock()
	c.Set(key, value)
}

// SetWithExpiration stores value for key, expiring at expiresAt, and schedules a snapshot write.
func (f *Facade[ID, K, V]) SetWithExpiration(key K, value V, expiresAt time.Time) {
	c := f.get()
	f.mu.Lock()
	defer f.mu.Unlock()
	c.SetWithExpiration(key, value, expiresAt)
}

// Remove removes key and schedules a snapshot write.
func (f *Facade[ID, K, V]) Remove(key K) {
	c := f.get()
	f.mu.Lock()
	defer f.mu.Unlock()
	c.Remove(key)
}

// Clear removes every entry and schedules a snapshot write.
func (f *Facade[ID, K, V]) Clear() {
	c := f.get()
	f.mu.Lock()
	defer f.mu.Unlock()
	c.Clear()
}

// Keys returns the live keys in the order they were first written.
func (f *Facade[ID, K, V]) Keys() []K {
	c := f.get()
	f.mu.RLock()
	defer f.mu.RUnlock()
	return c.Keys()
}

// Save schedules a background snapshot write.
func (f *Facade[ID, K, V]) Save() {
	f.get().Save()
}

// Flush waits for scheduled writes and writes the current snapshot.
// A facade never used has nothing to write.
func (f *Facade[ID, K, V]) Flush(ctx context.Context) error {
	c := f.cache.Load()
	if c == nil {
		return nil
	}
	return c.Flush(ctx)
}
