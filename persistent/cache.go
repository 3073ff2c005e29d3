package persistent

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang/glog"
	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/ttlcache"
	"github.com/sourcegraph/conc"
)

type record[K any, V any] struct {
	Key            K         `json:"key"`
	Value          V         `json:"value"`
	ExpirationDate time.Time `json:"expirationDate"`
}

// Cache is a named TTL cache persisted to a Backend.
// Snapshots hold the ledger keys still present in the store, in the order they were first written.
type Cache[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint] struct {
	cache   *ttlcache.Cache[ID, K, V]
	name    string
	options options[ID, K, V]

	// mu guards the ledger and orders mutations against snapshots.
	mu     sync.Mutex
	ledger *ledger[ID, K]
	seq    uint64

	// pending holds evicted identities until a holder of mu reconciles them.
	evictMu sync.Mutex
	pending []ID

	// saveWanted is set by evictions when saving on eviction; the next unlock of mu honors it.
	saveWanted atomic.Bool

	commitMu  sync.Mutex
	committed uint64

	wgMu sync.Mutex
	wg   *conc.WaitGroup
}

var _ loadability.Cacheable[loadability.StringKey, struct{}] = (*Cache[string, loadability.StringKey, struct{}])(nil)

// New creates an empty cache persisted under name. An empty name disables persistence.
func New[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](name string, opts ...Option[ID, K, V]) *Cache[ID, K, V] {
	options := defaultOptions[ID, K, V]()
	for _, opt := range opts {
		opt.apply(&options)
	}

	c := &Cache[ID, K, V]{
		cache:   ttlcache.New(options.cacheOptions...),
		name:    name,
		options: options,
		ledger:  newLedger[ID, K](),
		wg:      conc.NewWaitGroup(),
	}
	c.cache.OnEvict(c.onEvict)
	return c
}

// Load restores the cache persisted under name.
// When the snapshot cannot be read or decoded the failure is reported to the error handler
// and an empty cache with the same name is returned. Loading never schedules a write.
func Load[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](ctx context.Context, name string, opts ...Option[ID, K, V]) *Cache[ID, K, V] {
	c := New(name, opts...)
	if name == "" {
		return c
	}

	data, err := c.options.backend.Read(ctx, name)
	if err != nil {
		c.report("read", err)
		return c
	}

	var records []record[K, V]
	if err := json.Unmarshal(data, &records); err != nil {
		c.report("decode", err)
		return c
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range records {
		c.cache.SetWithExpiration(r.Key, r.Value, r.ExpirationDate)
		c.ledger.add(r.Key.ID(), r.Key)
	}
	c.reconcileLocked()
	glog.V(2).Infof("loadability: loaded %d entries of cache %q", c.ledger.len(), name)
	return c
}

// Name returns the name the cache is persisted under.
func (c *Cache[ID, K, V]) Name() string {
	return c.name
}

// Get returns the value stored for key, even when it is stale.
func (c *Cache[ID, K, V]) Get(key K) (V, bool) {
	return c.cache.Get(key)
}

// Entry returns the stored entry for key, even when it is stale.
func (c *Cache[ID, K, V]) Entry(key K) (loadability.Entry[K, V], bool) {
	return c.cache.Entry(key)
}

// IsStale reports whether key is absent or its entry is stale.
func (c *Cache[ID, K, V]) IsStale(key K) bool {
	return c.cache.IsStale(key)
}

// Len returns the number of stored entries.
func (c *Cache[ID, K, V]) Len() int {
	return c.cache.Len()
}

// Lifetime returns the lifetime applied by Set.
func (c *Cache[ID, K, V]) Lifetime() time.Duration {
	return c.cache.Lifetime()
}

// Set stores value for key and schedules a snapshot write.
func (c *Cache[ID, K, V]) Set(key K, value V) {
	c.SetWithExpiration(key, value, time.Time{})
}

// SetWithExpiration stores value for key, expiring at expiresAt, and schedules a snapshot write.
// A zero expiresAt applies the cache lifetime.
func (c *Cache[ID, K, V]) SetWithExpiration(key K, value V, expiresAt time.Time) {
	c.mu.Lock()
	if expiresAt.IsZero() {
		c.cache.Set(key, value)
	} else {
		c.cache.SetWithExpiration(key, value, expiresAt)
	}
	c.ledger.add(key.ID(), key)
	c.reconcileLocked()
	c.mu.Unlock()

	c.saveWanted.Store(false)
	c.Save()
}

// Remove removes key and schedules a snapshot write.
func (c *Cache[ID, K, V]) Remove(key K) {
	c.mu.Lock()
	c.cache.Delete(key)
	c.ledger.remove(key.ID())
	c.reconcileLocked()
	c.mu.Unlock()

	c.saveWanted.Store(false)
	c.Save()
}

// Clear removes every entry and schedules a snapshot write.
func (c *Cache[ID, K, V]) Clear() {
	c.mu.Lock()
	c.cache.Clear()
	c.ledger.clear()
	c.evictMu.Lock()
	c.pending = nil
	c.evictMu.Unlock()
	c.mu.Unlock()

	c.saveWanted.Store(false)
	c.Save()
}

// Keys returns the keys a snapshot taken now would contain, in ledger order.
func (c *Cache[ID, K, V]) Keys() []K {
	c.mu.Lock()
	defer c.unlock()
	c.reconcileLocked()

	keys := make([]K, 0, c.ledger.len())
	c.ledger.each(func(_ ID, key K) {
		keys = append(keys, key)
	})
	return keys
}

func (c *Cache[ID, K, V]) onEvict(id ID, _ K) {
	c.evictMu.Lock()
	c.pending = append(c.pending, id)
	c.evictMu.Unlock()
	// set before TryLock, so a holder of mu sees it when unlocking
	if c.options.saveOnEviction {
		c.saveWanted.Store(true)
	}

	// otherwise the next holder of mu reconciles
	if !c.mu.TryLock() {
		return
	}
	c.reconcileLocked()
	c.unlock()
}

// unlock releases mu and schedules the write an eviction asked for while mu was held.
func (c *Cache[ID, K, V]) unlock() {
	c.mu.Unlock()
	if c.saveWanted.Swap(false) {
		c.Save()
	}
}

// reconcileLocked drops evicted identities from the ledger. Identities written again since
// their eviction are present in the store and stay.
func (c *Cache[ID, K, V]) reconcileLocked() {
	c.evictMu.Lock()
	pending := c.pending
	c.pending = nil
	c.evictMu.Unlock()

	for _, id := range pending {
		if !c.cache.Contains(id) {
			c.ledger.remove(id)
		}
	}
}

// snapshot returns the encoded live entries and the sequence number ordering it against other snapshots.
func (c *Cache[ID, K, V]) snapshot() ([]byte, uint64, error) {
	c.mu.Lock()
	c.reconcileLocked()
	c.seq++
	seq := c.seq
	records := make([]record[K, V], 0, c.ledger.len())
	c.ledger.each(func(id ID, key K) {
		e, ok := c.cache.Entry(key)
		if !ok {
			// evicted, not reported yet
			return
		}
		records = append(records, record[K, V]{Key: e.Key, Value: e.Value, ExpirationDate: e.ExpiresAt})
	})
	c.unlock()

	data, err := json.Marshal(records)
	return data, seq, err
}

// Save schedules a background write of the current snapshot. It never blocks on I/O.
func (c *Cache[ID, K, V]) Save() {
	if c.name == "" {
		return
	}

	c.wgMu.Lock()
	defer c.wgMu.Unlock()
	c.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.options.writeTimeout)
		defer cancel()
		if err := c.write(ctx); err != nil {
			c.options.onError(err)
		}
	})
}

// Flush waits for the scheduled writes and then writes the current snapshot synchronously.
func (c *Cache[ID, K, V]) Flush(ctx context.Context) error {
	if c.name == "" {
		return nil
	}

	c.wgMu.Lock()
	wg := c.wg
	c.wg = conc.NewWaitGroup()
	c.wgMu.Unlock()
	if r := wg.WaitAndRecover(); r != nil {
		c.report("write", r.AsError())
	}
	return c.write(ctx)
}

func (c *Cache[ID, K, V]) write(ctx context.Context) error {
	data, seq, err := c.snapshot()
	if err != nil {
		return c.persistenceError("encode", err)
	}

	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	if seq < c.committed {
		// a newer snapshot is already on the backend
		return nil
	}
	if err := c.options.backend.Write(ctx, c.name, data); err != nil {
		return c.persistenceError("write", err)
	}
	c.committed = seq
	return nil
}

func (c *Cache[ID, K, V]) persistenceError(op string, err error) error {
	return &loadability.PersistenceError{Op: op, Name: c.name, Err: err}
}

func (c *Cache[ID, K, V]) report(op string, err error) {
	c.options.onError(c.persistenceError(op, err))
}
