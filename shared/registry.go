package shared

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/golang/glog"
	"github.com/robfig/cron"
	"golang.org/x/sync/errgroup"
)

// ScheduledFlushTimeout bounds a flush started by the flush schedule.
var ScheduledFlushTimeout = time.Minute

type typePair struct {
	key   reflect.Type
	value reflect.Type
}

func (p typePair) String() string {
	return fmt.Sprintf("(%s, %s)", p.key.Elem(), p.value.Elem())
}

type member interface {
	Name() string
	Loaded() bool
	Flush(context.Context) error
}

// Registry holds the shared caches of a process.
type Registry struct {
	options options
	cron    *cron.Cron

	mu      sync.RWMutex
	members map[typePair]member
}

// NewRegistry creates a registry. It fails only when the flush schedule cannot be parsed.
func NewRegistry(opts ...Option) (*Registry, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}

	r := &Registry{
		options: options,
		members: map[typePair]member{},
	}
	if options.flushSchedule != "" {
		r.cron = cron.New()
		if err := r.cron.AddFunc(options.flushSchedule, r.scheduledFlush); err != nil {
			return nil, fmt.Errorf("invalid flush schedule %q: %w", options.flushSchedule, err)
		}
		r.cron.Start()
	}
	return r, nil
}

func (r *Registry) scheduledFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), ScheduledFlushTimeout)
	defer cancel()
	if err := r.Flush(ctx); err != nil {
		glog.Errorf("loadability: scheduled flush: %v", err)
	}
}

// Flush writes the snapshot of every loaded cache and returns the first failure.
// Caches never used are not loaded.
func (r *Registry) Flush(ctx context.Context) error {
	r.mu.RLock()
	members := make([]member, 0, len(r.members))
	for _, m := range r.members {
		if m.Loaded() {
			members = append(members, m)
		}
	}
	r.mu.RUnlock()

	eg, ctx := errgroup.WithContext(ctx)
	for _, m := range members {
		eg.Go(func() error {
			return m.Flush(ctx)
		})
	}
	return eg.Wait()
}

// Close stops the flush schedule and flushes every loaded cache.
func (r *Registry) Close(ctx context.Context) error {
	if r.cron != nil {
		r.cron.Stop()
	}
	return r.Flush(ctx)
}

// Names returns the names of the registered caches.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.members))
	for _, m := range r.members {
		names = append(names, m.Name())
	}
	return names
}
