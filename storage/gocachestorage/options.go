package gocachestorage

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval is how often the janitor looks for entries past their retention.
var DefaultCleanupInterval = time.Minute

// Option is the interface for the options of the go-cache store.
type Option[ID comparable] interface {
	apply(*options[ID])
}

type optionFunc[ID comparable] func(*options[ID])

func (f optionFunc[ID]) apply(o *options[ID]) {
	f(o)
}

// WithRetention sets how long the store keeps an entry before dropping it on its own.
// The default keeps entries until they are deleted.
func WithRetention[ID comparable](d time.Duration) Option[ID] {
	return optionFunc[ID](func(o *options[ID]) {
		o.retention = d
	})
}

// WithCleanupInterval sets the janitor interval. A non-positive interval disables the janitor,
// and entries past their retention are then only hidden, never reported.
func WithCleanupInterval[ID comparable](d time.Duration) Option[ID] {
	return optionFunc[ID](func(o *options[ID]) {
		o.cleanupInterval = d
	})
}

// WithKeyEncoder sets the function that turns an identity into a go-cache key.
// Distinct identities must encode to distinct strings.
func WithKeyEncoder[ID comparable](f func(ID) string) Option[ID] {
	return optionFunc[ID](func(o *options[ID]) {
		o.encodeKey = f
	})
}

type options[ID comparable] struct {
	retention       time.Duration
	cleanupInterval time.Duration
	encodeKey       func(ID) string
}

func defaultOptions[ID comparable]() options[ID] {
	return options[ID]{
		retention:       gocache.NoExpiration,
		cleanupInterval: DefaultCleanupInterval,
		encodeKey: func(id ID) string {
			return fmt.Sprint(id)
		},
	}
}
