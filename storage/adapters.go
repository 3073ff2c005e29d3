package storage

import (
	"sync"

	"github.com/karupanerura/loadability"
)

var _ loadability.Store[uint8, struct{}] = (*FunctionsStore[uint8, struct{}])(nil)

// FunctionsStore is a loadability.Store implementation that uses functions to perform the store operations.
// It is handy for adapting an existing map-like structure, or for stubbing a store in tests.
type FunctionsStore[ID comparable, E any] struct {
	// GetFunc retrieves the entry stored under id.
	GetFunc func(ID) (E, bool)

	// SetFunc stores an entry under id, overwriting any existing one.
	SetFunc func(ID, E)

	// DeleteFunc removes the entry stored under id and reports whether one existed.
	DeleteFunc func(ID) bool

	// ClearFunc removes every entry.
	ClearFunc func()

	// LenFunc returns the number of stored entries.
	LenFunc func() int

	mu       sync.RWMutex
	listener func(ID, E)
}

// Get calls the GetFunc function.
func (s *FunctionsStore[ID, E]) Get(id ID) (E, bool) {
	return s.GetFunc(id)
}

// Set calls the SetFunc function.
func (s *FunctionsStore[ID, E]) Set(id ID, entry E) {
	s.SetFunc(id, entry)
}

// Delete calls the DeleteFunc function.
func (s *FunctionsStore[ID, E]) Delete(id ID) bool {
	return s.DeleteFunc(id)
}

// Clear calls the ClearFunc function.
func (s *FunctionsStore[ID, E]) Clear() {
	s.ClearFunc()
}

// Len calls the LenFunc function.
func (s *FunctionsStore[ID, E]) Len() int {
	return s.LenFunc()
}

// OnEvict registers the eviction listener.
func (s *FunctionsStore[ID, E]) OnEvict(f func(ID, E)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = f
}

// Evict reports an entry dropped by the underlying structure to the eviction listener.
// It must not be called while the underlying structure holds a lock the listener may need.
func (s *FunctionsStore[ID, E]) Evict(id ID, entry E) {
	s.mu.RLock()
	f := s.listener
	s.mu.RUnlock()
	if f != nil {
		f(id, entry)
	}
}
