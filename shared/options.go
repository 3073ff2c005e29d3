package shared

import (
	"github.com/golang/glog"
	"github.com/karupanerura/loadability/persistent"
)

// Option is the interface for the options of the registry.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithBackend sets the backend every cache of the registry is persisted to.
func WithBackend(backend persistent.Backend) Option {
	return optionFunc(func(o *options) {
		o.backend = backend
	})
}

// WithDirectory persists every cache of the registry as a file in dir.
func WithDirectory(dir string) Option {
	return WithBackend(persistent.FileBackend{Dir: dir})
}

// WithFlushSchedule flushes the loaded caches periodically, following a cron spec such as
// "@every 5m" or "0 */10 * * * *".
func WithFlushSchedule(spec string) Option {
	return optionFunc(func(o *options) {
		o.flushSchedule = spec
	})
}

// WithErrorHandler sets the function receiving the persistence errors of every cache of the registry.
func WithErrorHandler(f func(error)) Option {
	return optionFunc(func(o *options) {
		o.onError = f
	})
}

type options struct {
	backend       persistent.Backend
	flushSchedule string
	onError       func(error)
}

func defaultOptions() options {
	return options{
		backend: persistent.FileBackend{},
		onError: func(err error) {
			glog.Warningf("%v", err)
		},
	}
}
