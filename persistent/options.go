package persistent

import (
	"time"

	"github.com/golang/glog"
	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/ttlcache"
)

// DefaultWriteTimeout bounds a single background snapshot write.
const DefaultWriteTimeout = 30 * time.Second

// Option is the interface for the options of the persistent cache.
type Option[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint] interface {
	apply(*options[ID, K, V])
}

type optionFunc[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint] func(*options[ID, K, V])

func (f optionFunc[ID, K, V]) apply(o *options[ID, K, V]) {
	f(o)
}

// WithBackend sets where snapshots are stored.
func WithBackend[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](backend Backend) Option[ID, K, V] {
	return optionFunc[ID, K, V](func(o *options[ID, K, V]) {
		o.backend = backend
	})
}

// WithDirectory stores snapshots as files in dir.
func WithDirectory[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](dir string) Option[ID, K, V] {
	return WithBackend[ID, K, V](FileBackend{Dir: dir})
}

// WithCacheOptions sets the options of the underlying TTL cache.
func WithCacheOptions[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](opts ...ttlcache.Option[ID, K, V]) Option[ID, K, V] {
	return optionFunc[ID, K, V](func(o *options[ID, K, V]) {
		o.cacheOptions = append(o.cacheOptions, opts...)
	})
}

// WithErrorHandler sets the function receiving every *loadability.PersistenceError.
// The default logs them as warnings.
func WithErrorHandler[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](f func(error)) Option[ID, K, V] {
	return optionFunc[ID, K, V](func(o *options[ID, K, V]) {
		o.onError = f
	})
}

// WithWriteTimeout bounds every background snapshot write.
func WithWriteTimeout[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](d time.Duration) Option[ID, K, V] {
	return optionFunc[ID, K, V](func(o *options[ID, K, V]) {
		o.writeTimeout = d
	})
}

// WithSaveOnEviction makes entries dropped by the backing store schedule a snapshot write, like Remove does.
// By default an eviction only updates the ledger and the next write reflects it.
func WithSaveOnEviction[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](enabled bool) Option[ID, K, V] {
	return optionFunc[ID, K, V](func(o *options[ID, K, V]) {
		o.saveOnEviction = enabled
	})
}

type options[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint] struct {
	backend        Backend
	cacheOptions   []ttlcache.Option[ID, K, V]
	onError        func(error)
	writeTimeout   time.Duration
	saveOnEviction bool
}

func defaultOptions[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint]() options[ID, K, V] {
	return options[ID, K, V]{
		backend: FileBackend{},
		onError: func(err error) {
			glog.Warningf("%v", err)
		},
		writeTimeout: DefaultWriteTimeout,
	}
}
