package loader

import (
	"context"
	"sync"

	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/internal/panicutil"
)

// ErrGoexit is the error of a fetch that called runtime.Goexit.
var ErrGoexit = panicutil.ErrGoexit

type result[V any] struct {
	value V
	err   error
}

type flight[K any, V any] struct {
	key     K
	cancel  context.CancelFunc
	waiters []chan result[V]
}

// Engine publishes the object produced by a fetcher, running at most one fetch at a time.
type Engine[K any, V loadability.ValueConstraint] struct {
	fetcher loadability.Fetchable[K, V]
	options options[K, V]

	mu          sync.Mutex
	state       State
	object      V
	hasObject   bool
	err         error
	flight      *flight[K, V]
	subscribers map[chan Snapshot[V]]struct{}
}

// New creates an idle engine fetching through fetcher.
func New[K any, V loadability.ValueConstraint](fetcher loadability.Fetchable[K, V], opts ...Option[K, V]) *Engine[K, V] {
	options := defaultOptions[K, V]()
	for _, opt := range opts {
		opt.apply(&options)
	}
	return &Engine[K, V]{
		fetcher:     fetcher,
		options:     options,
		subscribers: map[chan Snapshot[V]]struct{}{},
	}
}

// Load fetches the object for key and publishes the outcome.
// If a fetch is already in flight, Load joins it instead of starting another one, even for a different key.
// A canceled ctx only stops waiting; the fetch goes on for the other callers.
func (e *Engine[K, V]) Load(ctx context.Context, key K) (V, error) {
	return e.load(ctx, key, nil)
}

// Refresh clears the published object and fetches the object for key, bypassing any cache.
// If a fetch is already in flight, Refresh joins it and leaves the object untouched.
func (e *Engine[K, V]) Refresh(ctx context.Context, key K) (V, error) {
	return e.refresh(ctx, key, nil)
}

// load publishes the value lookup finds for key, or joins or starts a fetch.
func (e *Engine[K, V]) load(ctx context.Context, key K, lookup func(K) (V, bool)) (V, error) {
	e.mu.Lock()
	if e.flight == nil && lookup != nil {
		if v, ok := lookup(key); ok {
			e.state = StateSucceeded
			e.object = v
			e.hasObject = true
			e.err = nil
			e.notifyLocked()
			e.mu.Unlock()
			return e.options.cloner.CloneValue(v), nil
		}
	}
	ch := e.joinLocked(key)
	e.mu.Unlock()

	return e.wait(ctx, ch)
}

// refresh runs prepare for key and clears the object before starting a fetch, unless one is in flight.
func (e *Engine[K, V]) refresh(ctx context.Context, key K, prepare func(K)) (V, error) {
	e.mu.Lock()
	if e.flight == nil {
		if prepare != nil {
			prepare(key)
		}
		var zero V
		e.object = zero
		e.hasObject = false
	}
	ch := e.joinLocked(key)
	e.mu.Unlock()

	return e.wait(ctx, ch)
}

func (e *Engine[K, V]) wait(ctx context.Context, ch <-chan result[V]) (V, error) {
	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// joinLocked registers a waiter on the flight, starting one for key if none is in flight.
func (e *Engine[K, V]) joinLocked(key K) <-chan result[V] {
	if e.flight == nil {
		e.startLocked(key)
	}
	ch := make(chan result[V], 1)
	e.flight.waiters = append(e.flight.waiters, ch)
	return ch
}

func (e *Engine[K, V]) startLocked(key K) {
	ctx, cancel := context.WithCancel(e.options.context())
	if e.options.timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, e.options.timeout)
		cancelCtx := cancel
		cancel = func() {
			cancelTimeout()
			cancelCtx()
		}
	}

	f := &flight[K, V]{key: key, cancel: cancel}
	e.flight = f
	e.state = StateLoading
	e.notifyLocked()

	var value V
	panicutil.Go(func() (err error) {
		value, err = e.fetcher.Fetch(ctx, key)
		return err
	}, func(err error) {
		e.finish(f, value, err)
	})
}

func (e *Engine[K, V]) finish(f *flight[K, V], value V, err error) {
	defer f.cancel()

	if err == nil && len(e.options.loadCompleted) > 0 {
		if !e.current(f) {
			return
		}
		// the flight stays registered, so new callers join it instead of missing the hooks' writes
		err = panicutil.Call(func() error {
			for _, hook := range e.options.loadCompleted {
				hook(f.key, e.options.cloner.CloneValue(value))
			}
			return nil
		})
	}

	e.mu.Lock()
	if e.flight != f {
		// canceled; its waiters have been released
		e.mu.Unlock()
		return
	}
	e.flight = nil
	if err != nil {
		e.state = StateFailed
		e.err = err
	} else {
		e.state = StateSucceeded
		e.object = value
		e.hasObject = true
		e.err = nil
	}
	e.notifyLocked()
	waiters := f.waiters
	e.mu.Unlock()

	for i, ch := range waiters {
		if err != nil {
			ch <- result[V]{err: err}
			continue
		}
		v := value
		if i != 0 {
			v = e.options.cloner.CloneValue(value)
		}
		ch <- result[V]{value: v}
	}
}

func (e *Engine[K, V]) current(f *flight[K, V]) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flight == f
}

// Cancel abandons the fetch in flight, if any. Its callers get context.Canceled and the engine
// becomes idle; the published object and error are left as they were. Cancel is safe to call at any time.
func (e *Engine[K, V]) Cancel() {
	e.mu.Lock()
	f := e.flight
	if f == nil {
		e.mu.Unlock()
		return
	}
	e.flight = nil
	e.state = StateIdle
	e.notifyLocked()
	e.mu.Unlock()

	f.cancel()
	for _, ch := range f.waiters {
		ch <- result[V]{err: context.Canceled}
	}
}

// DismissError clears the published error. A failed engine becomes idle.
func (e *Engine[K, V]) DismissError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		return
	}
	e.err = nil
	if e.state == StateFailed {
		e.state = StateIdle
	}
	e.notifyLocked()
}

// Snapshot returns the published state.
func (e *Engine[K, V]) Snapshot() Snapshot[V] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Object returns the published object.
func (e *Engine[K, V]) Object() (V, bool) {
	s := e.Snapshot()
	return s.Object, s.HasObject
}

// Err returns the published error.
func (e *Engine[K, V]) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// State returns the lifecycle state.
func (e *Engine[K, V]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Subscribe returns a channel receiving the published state, starting with the current one.
// A slow subscriber only misses intermediate snapshots: the channel always ends up holding the latest.
// The returned function unsubscribes and closes the channel.
func (e *Engine[K, V]) Subscribe() (<-chan Snapshot[V], func()) {
	ch := make(chan Snapshot[V], 1)

	e.mu.Lock()
	e.subscribers[ch] = struct{}{}
	ch <- e.snapshotLocked()
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subscribers, ch)
			close(ch)
		})
	}
}

func (e *Engine[K, V]) snapshotLocked() Snapshot[V] {
	s := Snapshot[V]{
		State:     e.state,
		HasObject: e.hasObject,
		Err:       e.err,
	}
	if e.hasObject {
		s.Object = e.options.cloner.CloneValue(e.object)
	}
	return s
}

func (e *Engine[K, V]) notifyLocked() {
	if len(e.subscribers) == 0 {
		return
	}
	s := e.snapshotLocked()
	for ch := range e.subscribers {
		// drop the unread snapshot, if any
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
