package loader

import (
	"context"
	"time"

	"github.com/karupanerura/loadability"
)

// Option is the interface for the options of the Engine.
type Option[K any, V loadability.ValueConstraint] interface {
	apply(*options[K, V])
}

type optionFunc[K any, V loadability.ValueConstraint] func(*options[K, V])

func (f optionFunc[K, V]) apply(o *options[K, V]) {
	f(o)
}

// WithTimeout bounds every fetch. Zero means no bound.
func WithTimeout[K any, V loadability.ValueConstraint](d time.Duration) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.timeout = d
	})
}

// WithBackgroundContextProvider sets the context provider fetches derive their context from.
// The provider must return a new context for each call.
// The default context provider is context.Background.
func WithBackgroundContextProvider[K any, V loadability.ValueConstraint](provider func() context.Context) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.context = provider
	})
}

// WithCloner sets the value cloner used when one fetched value is handed to several receivers.
func WithCloner[K any, V loadability.ValueConstraint](cloner loadability.ValueCloner[V]) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.cloner = cloner
	})
}

// WithLoadCompleted adds a hook called with every successfully fetched value, before it is
// handed to the waiting callers. Hooks run in the order they were added.
// A panicking hook fails the fetch with a *panics.ErrRecovered.
func WithLoadCompleted[K any, V loadability.ValueConstraint](f func(K, V)) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.loadCompleted = append(o.loadCompleted, f)
	})
}

type options[K any, V loadability.ValueConstraint] struct {
	timeout       time.Duration
	context       func() context.Context
	cloner        loadability.ValueCloner[V]
	loadCompleted []func(K, V)
}

func defaultOptions[K any, V loadability.ValueConstraint]() options[K, V] {
	return options[K, V]{
		context: context.Background,
		cloner:  loadability.DefaultValueCloner[V](),
	}
}
