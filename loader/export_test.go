package loader

// Waiters returns the number of callers waiting on the fetch in flight.
func (e *Engine[K, V]) Waiters() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.flight == nil {
		return 0
	}
	return len(e.flight.waiters)
}
