package memstorage

import (
	"container/list"
	"hash/maphash"
	"sync"
	"sync/atomic"

	"github.com/karupanerura/loadability"
)

type item[ID comparable, E any] struct {
	id    ID
	value E
}

type bucket[ID comparable, E any] struct {
	mu       sync.RWMutex
	m        map[ID]*list.Element
	lru      *list.List // front = most recently used
	capacity int
}

func newBucket[ID comparable, E any](capacity int) *bucket[ID, E] {
	return &bucket[ID, E]{
		m:        map[ID]*list.Element{},
		lru:      list.New(),
		capacity: capacity,
	}
}

// Storage is an in-memory loadability.Store.
// Keys are distributed across buckets by the hash of their identity, each bucket guarded by its own lock.
// With a capacity, every bucket evicts its least recently used entries once it holds more than its share,
// and the shares add up to the capacity.
type Storage[ID comparable, E any] struct {
	buckets  []*bucket[ID, E]
	options  options[ID]
	listener atomic.Pointer[func(ID, E)]
}

var _ loadability.Store[uint8, struct{}] = (*Storage[uint8, struct{}])(nil)

// NewInMemoryStorage creates a new in-memory store.
func NewInMemoryStorage[ID comparable, E any](opts ...Option[ID]) *Storage[ID, E] {
	options := defaultOptions[ID]()
	for _, opt := range opts {
		opt.apply(&options)
	}

	bucketsSize := options.bucketsSize
	if options.capacity > 0 {
		// every bucket needs a share of at least one entry
		bucketsSize = min(bucketsSize, options.capacity)
	}
	buckets := make([]*bucket[ID, E], bucketsSize)
	for i := range buckets {
		buckets[i] = newBucket[ID, E](bucketCapacity(options.capacity, bucketsSize, i))
	}
	return &Storage[ID, E]{
		buckets: buckets,
		options: options,
	}
}

// bucketCapacity returns the share of the i-th bucket. The shares add up to capacity.
func bucketCapacity(capacity, bucketsSize, i int) int {
	if capacity == 0 {
		return 0
	}
	share := capacity / bucketsSize
	if i < capacity%bucketsSize {
		share++
	}
	return share
}

// resolveBucket returns the bucket that corresponds to the given id.
func (s *Storage[ID, E]) resolveBucket(id ID) *bucket[ID, E] {
	if len(s.buckets) == 1 {
		return s.buckets[0]
	}
	return s.buckets[s.options.hashKey(id)%uint64(len(s.buckets))]
}

func (s *Storage[ID, E]) Get(id ID) (E, bool) {
	b := s.resolveBucket(id)
	if b.capacity == 0 {
		b.mu.RLock()
		defer b.mu.RUnlock()
		if el, ok := b.m[id]; ok {
			return el.Value.(*item[ID, E]).value, true
		}
		var zero E
		return zero, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.m[id]; ok {
		b.lru.MoveToFront(el)
		return el.Value.(*item[ID, E]).value, true
	}
	var zero E
	return zero, false
}

func (s *Storage[ID, E]) Set(id ID, value E) {
	b := s.resolveBucket(id)
	evicted := s.set(b, id, value)
	s.notify(evicted)
}

func (s *Storage[ID, E]) set(b *bucket[ID, E], id ID, value E) []*item[ID, E] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if el, ok := b.m[id]; ok {
		el.Value.(*item[ID, E]).value = value
		b.lru.MoveToFront(el)
		return nil
	}
	b.m[id] = b.lru.PushFront(&item[ID, E]{id: id, value: value})

	if b.capacity == 0 {
		return nil
	}
	var evicted []*item[ID, E]
	for b.lru.Len() > b.capacity {
		el := b.lru.Back()
		it := el.Value.(*item[ID, E])
		b.lru.Remove(el)
		delete(b.m, it.id)
		evicted = append(evicted, it)
	}
	return evicted
}

func (s *Storage[ID, E]) Delete(id ID) bool {
	_, ok := s.remove(id)
	return ok
}

// Evict removes the entry for id as if the store had dropped it on its own, and reports it to the eviction listener.
func (s *Storage[ID, E]) Evict(id ID) bool {
	it, ok := s.remove(id)
	if ok {
		s.notify([]*item[ID, E]{it})
	}
	return ok
}

func (s *Storage[ID, E]) remove(id ID) (*item[ID, E], bool) {
	b := s.resolveBucket(id)
	b.mu.Lock()
	defer b.mu.Unlock()

	el, ok := b.m[id]
	if !ok {
		return nil, false
	}
	b.lru.Remove(el)
	delete(b.m, id)
	return el.Value.(*item[ID, E]), true
}

func (s *Storage[ID, E]) Clear() {
	for _, b := range s.buckets {
		b.mu.Lock()
		b.m = map[ID]*list.Element{}
		b.lru.Init()
		b.mu.Unlock()
	}
}

func (s *Storage[ID, E]) Len() int {
	n := 0
	for _, b := range s.buckets {
		b.mu.RLock()
		n += len(b.m)
		b.mu.RUnlock()
	}
	return n
}

func (s *Storage[ID, E]) OnEvict(f func(ID, E)) {
	s.listener.Store(&f)
}

// notify reports evicted items to the listener; it must be called without bucket locks held.
func (s *Storage[ID, E]) notify(evicted []*item[ID, E]) {
	if len(evicted) == 0 {
		return
	}
	f := s.listener.Load()
	if f == nil || *f == nil {
		return
	}
	for _, it := range evicted {
		(*f)(it.id, it.value)
	}
}

func defaultHashKey[ID comparable]() func(ID) uint64 {
	seed := maphash.MakeSeed()
	return func(id ID) uint64 {
		return maphash.Comparable(seed, id)
	}
}
