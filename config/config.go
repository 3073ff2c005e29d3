// Package config reads the settings file of a loadability process.
//
// The file is INI formatted:
//
//	[cache]
//	directory = /var/cache/app
//	lifetime = 1h
//	capacity = 1024
//	retention = 24h
//	save_on_eviction = false
//	flush_schedule = @every 5m
//
//	[loader]
//	timeout = 10s
//	attempts = 3
//	backoff_initial = 100ms
//
// Every option is optional. Durations use time.ParseDuration syntax.
package config

import (
	"fmt"
	"time"

	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/loader"
	"github.com/karupanerura/loadability/loader/transport"
	"github.com/karupanerura/loadability/persistent"
	"github.com/karupanerura/loadability/shared"
	"github.com/karupanerura/loadability/storage/gocachestorage"
	"github.com/karupanerura/loadability/storage/memstorage"
	"github.com/karupanerura/loadability/ttlcache"
	rconfig "github.com/robfig/config"
)

// Sections of the settings file.
const (
	// CacheSection holds the options of the caches.
	CacheSection = "cache"

	// LoaderSection holds the options of the loaders and their transport.
	LoaderSection = "loader"
)

const (
	keyDirectory      = "directory"
	keyLifetime       = "lifetime"
	keyCapacity       = "capacity"
	keyRetention      = "retention"
	keySaveOnEviction = "save_on_eviction"
	keyFlushSchedule  = "flush_schedule"

	keyTimeout        = "timeout"
	keyAttempts       = "attempts"
	keyBackOffInitial = "backoff_initial"
)

// Settings holds the values of a settings file.
// Zero values mean the package defaults.
type Settings struct {
	// Directory is where caches are persisted.
	Directory string

	// Lifetime is the default lifetime of cache entries.
	Lifetime time.Duration

	// Capacity bounds the number of entries held in memory by each cache.
	Capacity int

	// Retention makes entries leave memory this long after their last write.
	// When set, caches are backed by go-cache instead of the in-memory store and Capacity is ignored.
	Retention time.Duration

	// SaveOnEviction makes entries dropped from memory schedule a snapshot write.
	SaveOnEviction bool

	// FlushSchedule is a cron spec flushing every loaded cache.
	FlushSchedule string

	// Timeout bounds every fetch.
	Timeout time.Duration

	// Attempts is the number of tries of a request, the first one included.
	Attempts int

	// BackOffInitial is the first retry interval.
	BackOffInitial time.Duration
}

// Load reads the settings file at path.
func Load(path string) (Settings, error) {
	c, err := rconfig.ReadDefault(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read %s: %w", path, err)
	}

	r := reader{c: c}
	s := Settings{
		Directory:      r.string(CacheSection, keyDirectory),
		Lifetime:       r.duration(CacheSection, keyLifetime),
		Capacity:       r.int(CacheSection, keyCapacity),
		Retention:      r.duration(CacheSection, keyRetention),
		SaveOnEviction: r.bool(CacheSection, keySaveOnEviction),
		FlushSchedule:  r.string(CacheSection, keyFlushSchedule),
		Timeout:        r.duration(LoaderSection, keyTimeout),
		Attempts:       r.int(LoaderSection, keyAttempts),
		BackOffInitial: r.duration(LoaderSection, keyBackOffInitial),
	}
	if r.err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, r.err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s Settings) validate() error {
	switch {
	case s.Lifetime < 0:
		return fmt.Errorf("[%s] %s must not be negative", CacheSection, keyLifetime)
	case s.Capacity < 0:
		return fmt.Errorf("[%s] %s must not be negative", CacheSection, keyCapacity)
	case s.Retention < 0:
		return fmt.Errorf("[%s] %s must not be negative", CacheSection, keyRetention)
	case s.Timeout < 0:
		return fmt.Errorf("[%s] %s must not be negative", LoaderSection, keyTimeout)
	case s.Attempts < 0:
		return fmt.Errorf("[%s] %s must not be negative", LoaderSection, keyAttempts)
	case s.BackOffInitial < 0:
		return fmt.Errorf("[%s] %s must not be negative", LoaderSection, keyBackOffInitial)
	}
	return nil
}

// RegistryOptions returns the options of a shared.Registry.
func (s Settings) RegistryOptions() []shared.Option {
	var opts []shared.Option
	if s.Directory != "" {
		opts = append(opts, shared.WithDirectory(s.Directory))
	}
	if s.FlushSchedule != "" {
		opts = append(opts, shared.WithFlushSchedule(s.FlushSchedule))
	}
	return opts
}

// TransportOptions returns the options of a transport.Client.
func (s Settings) TransportOptions() []transport.Option {
	var opts []transport.Option
	if s.Attempts > 0 {
		opts = append(opts, transport.WithAttempts(s.Attempts))
	}
	if s.BackOffInitial > 0 {
		opts = append(opts, transport.WithBackOff(transport.ExponentialBackOff(s.BackOffInitial)))
	}
	return opts
}

// CacheOptions returns the options of a TTL cache.
// Each call creates a new backing store.
func CacheOptions[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](s Settings) []ttlcache.Option[ID, K, V] {
	var opts []ttlcache.Option[ID, K, V]
	if s.Lifetime > 0 {
		opts = append(opts, ttlcache.WithLifetime[ID, K, V](s.Lifetime))
	}
	switch {
	case s.Retention > 0:
		store := gocachestorage.New[ID, *loadability.Entry[K, V]](gocachestorage.WithRetention[ID](s.Retention))
		opts = append(opts, ttlcache.WithStore[ID, K, V](store))
	case s.Capacity > 0:
		store := memstorage.NewInMemoryStorage[ID, *loadability.Entry[K, V]](memstorage.WithCapacity[ID](s.Capacity))
		opts = append(opts, ttlcache.WithStore[ID, K, V](store))
	}
	return opts
}

// PersistentOptions returns the options of a persistent cache, the TTL cache options included.
// The directory is not among them: it belongs to the registry.
func PersistentOptions[ID comparable, K loadability.Identifiable[ID], V loadability.ValueConstraint](s Settings) []persistent.Option[ID, K, V] {
	return []persistent.Option[ID, K, V]{
		persistent.WithCacheOptions(CacheOptions[ID, K, V](s)...),
		persistent.WithSaveOnEviction[ID, K, V](s.SaveOnEviction),
	}
}

// LoaderOptions returns the options of a loader.Engine.
func LoaderOptions[K any, V loadability.ValueConstraint](s Settings) []loader.Option[K, V] {
	var opts []loader.Option[K, V]
	if s.Timeout > 0 {
		opts = append(opts, loader.WithTimeout[K, V](s.Timeout))
	}
	return opts
}

// reader keeps the first error of a sequence of reads.
type reader struct {
	c   *rconfig.Config
	err error
}

func (r *reader) string(section, option string) string {
	if r.err != nil || !r.c.HasOption(section, option) {
		return ""
	}
	v, err := r.c.String(section, option)
	if err != nil {
		r.err = fmt.Errorf("[%s] %s: %w", section, option, err)
	}
	return v
}

func (r *reader) int(section, option string) int {
	if r.err != nil || !r.c.HasOption(section, option) {
		return 0
	}
	v, err := r.c.Int(section, option)
	if err != nil {
		r.err = fmt.Errorf("[%s] %s: %w", section, option, err)
	}
	return v
}

func (r *reader) bool(section, option string) bool {
	if r.err != nil || !r.c.HasOption(section, option) {
		return false
	}
	v, err := r.c.Bool(section, option)
	if err != nil {
		r.err = fmt.Errorf("[%s] %s: %w", section, option, err)
	}
	return v
}

func (r *reader) duration(section, option string) time.Duration {
	v := r.string(section, option)
	if r.err != nil || v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.err = fmt.Errorf("[%s] %s: %w", section, option, err)
	}
	return d
}
