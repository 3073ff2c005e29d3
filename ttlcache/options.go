package ttlcache

import (
	"time"

	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/expiration"
)

// DefaultLifetime is the default lifetime of an entry.
const DefaultLifetime = 3600 * time.Second

// Option is the interface for the options of the cache.
type Option[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint] interface {
	apply(*options[ID, K, V])
}

type optionFunc[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint] func(*options[ID, K, V])

func (f optionFunc[ID, K, V]) apply(o *options[ID, K, V]) {
	f(o)
}

// WithLifetime sets how long a written entry stays fresh.
func WithLifetime[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](lifetime time.Duration) Option[ID, K, V] {
	if lifetime < 0 {
		panic("lifetime must not be negative")
	}
	return optionFunc[ID, K, V](func(o *options[ID, K, V]) {
		o.lifetime = lifetime
	})
}

// WithClock sets the clock used to compute and check expiration times.
func WithClock[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](clock loadability.Clock) Option[ID, K, V] {
	return optionFunc[ID, K, V](func(o *options[ID, K, V]) {
		o.clock = clock
	})
}

// WithStore sets the backing store. The cache takes over its eviction listener.
func WithStore[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](store loadability.Store[ID, *loadability.Entry[K, V]]) Option[ID, K, V] {
	return optionFunc[ID, K, V](func(o *options[ID, K, V]) {
		o.store = store
	})
}

// WithPolicy sets the staleness policy applied to present entries.
func WithPolicy[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](policy expiration.Policy) Option[ID, K, V] {
	return optionFunc[ID, K, V](func(o *options[ID, K, V]) {
		o.policy = policy
	})
}

// WithCloner sets the value cloner applied on every write and read.
func WithCloner[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](cloner loadability.ValueCloner[V]) Option[ID, K, V] {
	return optionFunc[ID, K, V](func(o *options[ID, K, V]) {
		o.cloner = cloner
	})
}

type options[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint] struct {
	lifetime time.Duration
	clock    loadability.Clock
	store    loadability.Store[ID, *loadability.Entry[K, V]]
	policy   expiration.Policy
	cloner   loadability.ValueCloner[V]
}

func defaultOptions[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint]() options[ID, K, V] {
	return options[ID, K, V]{
		lifetime: DefaultLifetime,
		clock:    loadability.SystemClock,
		policy:   expiration.Strict{},
		cloner:   loadability.DefaultValueCloner[V](),
	}
}
