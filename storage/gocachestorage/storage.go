package gocachestorage

import (
	"sync"
	"sync/atomic"

	"github.com/karupanerura/loadability"
	gocache "github.com/patrickmn/go-cache"
)

type item[ID comparable, E any] struct {
	id      ID
	value   E
	deleted atomic.Bool
}

// Storage is a loadability.Store on top of a go-cache instance.
type Storage[ID comparable, E any] struct {
	cache    *gocache.Cache
	options  options[ID]
	mu       sync.Mutex // serializes Delete against Set of the same key
	listener atomic.Pointer[func(ID, E)]
}

var _ loadability.Store[uint8, struct{}] = (*Storage[uint8, struct{}])(nil)

// New creates a new store.
func New[ID comparable, E any](opts ...Option[ID]) *Storage[ID, E] {
	options := defaultOptions[ID]()
	for _, opt := range opts {
		opt.apply(&options)
	}

	s := &Storage[ID, E]{
		cache:   gocache.New(options.retention, options.cleanupInterval),
		options: options,
	}
	s.cache.OnEvicted(s.onEvicted)
	return s
}

func (s *Storage[ID, E]) onEvicted(_ string, x any) {
	it, ok := x.(*item[ID, E])
	if !ok || it.deleted.Load() {
		return
	}
	if f := s.listener.Load(); f != nil && *f != nil {
		(*f)(it.id, it.value)
	}
}

func (s *Storage[ID, E]) Get(id ID) (E, bool) {
	x, ok := s.cache.Get(s.options.encodeKey(id))
	if !ok {
		var zero E
		return zero, false
	}
	return x.(*item[ID, E]).value, true
}

func (s *Storage[ID, E]) Set(id ID, entry E) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(s.options.encodeKey(id), &item[ID, E]{id: id, value: entry}, gocache.DefaultExpiration)
}

func (s *Storage[ID, E]) Delete(id ID) bool {
	key := s.options.encodeKey(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	x, ok := s.cache.Get(key)
	if ok {
		x.(*item[ID, E]).deleted.Store(true)
	}
	s.cache.Delete(key)
	return ok
}

// Evict drops the entry for id and reports it to the eviction listener, the same way the janitor does.
func (s *Storage[ID, E]) Evict(id ID) {
	s.cache.Delete(s.options.encodeKey(id))
}

// DeleteExpired drops every entry past its retention now instead of waiting for the janitor.
func (s *Storage[ID, E]) DeleteExpired() {
	s.cache.DeleteExpired()
}

func (s *Storage[ID, E]) Clear() {
	s.cache.Flush()
}

// Len returns the number of entries, including those past their retention the janitor has not dropped yet.
func (s *Storage[ID, E]) Len() int {
	return s.cache.ItemCount()
}

func (s *Storage[ID, E]) OnEvict(f func(ID, E)) {
	s.listener.Store(&f)
}
