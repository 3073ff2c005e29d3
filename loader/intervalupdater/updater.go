// Package intervalupdater keeps cached values warm by loading them at a fixed interval.
package intervalupdater

import (
	"context"
	"time"
)

// Loader is implemented by loader.Engine and loader.CachingEngine.
type Loader[K any, V any] interface {
	Load(context.Context, K) (V, error)
}

// IntervalUpdater loads a key in the background at a fixed interval.
// Used with a caching loader it refetches only once the cached value has gone stale,
// so consumers keep reading fresh values without waiting for a fetch.
type IntervalUpdater[K any, V any] struct {
	loader            Loader[K, V]
	key               K
	interval          time.Duration
	onBackgroundError func(error)
}

// NewIntervalUpdater creates a new IntervalUpdater.
// onBackgroundError receives the errors of background loads.
func NewIntervalUpdater[K any, V any](loader Loader[K, V], key K, interval time.Duration, onBackgroundError func(error)) *IntervalUpdater[K, V] {
	if interval <= 0 {
		panic("interval must be positive")
	}
	return &IntervalUpdater[K, V]{
		loader:            loader,
		key:               key,
		interval:          interval,
		onBackgroundError: onBackgroundError,
	}
}

// LaunchBackgroundUpdater loads the key once, then once per interval until ctx is canceled.
func (u *IntervalUpdater[K, V]) LaunchBackgroundUpdater(ctx context.Context) {
	go u.poll(ctx)
}

func (u *IntervalUpdater[K, V]) poll(ctx context.Context) {
	u.load(ctx)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			u.load(ctx)
		}
	}
}

func (u *IntervalUpdater[K, V]) load(ctx context.Context) {
	if _, err := u.loader.Load(ctx, u.key); err != nil && ctx.Err() == nil {
		u.onBackgroundError(err)
	}
}
