package config_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/config"
	"github.com/karupanerura/loadability/persistent"
	"github.com/karupanerura/loadability/ttlcache"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loadability.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    config.Settings
	}{
		{
			name:    "empty",
			content: "",
			want:    config.Settings{},
		},
		{
			name: "full",
			content: `[cache]
directory = /var/cache/app
lifetime = 1h
capacity = 1024
retention = 24h
save_on_eviction = true
flush_schedule = @every 5m

[loader]
timeout = 10s
attempts = 5
backoff_initial = 250ms
`,
			want: config.Settings{
				Directory:      "/var/cache/app",
				Lifetime:       time.Hour,
				Capacity:       1024,
				Retention:      24 * time.Hour,
				SaveOnEviction: true,
				FlushSchedule:  "@every 5m",
				Timeout:        10 * time.Second,
				Attempts:       5,
				BackOffInitial: 250 * time.Millisecond,
			},
		},
		{
			name: "partial",
			content: `[loader]
attempts = 2
`,
			want: config.Settings{Attempts: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := config.Load(writeFile(t, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "bad duration", content: "[cache]\nlifetime = soon\n"},
		{name: "bad int", content: "[cache]\ncapacity = many\n"},
		{name: "bad bool", content: "[cache]\nsave_on_eviction = perhaps\n"},
		{name: "negative attempts", content: "[loader]\nattempts = -1\n"},
		{name: "negative timeout", content: "[loader]\ntimeout = -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := config.Load(writeFile(t, tt.content)); err == nil {
				t.Error("Load() must fail")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := config.Load(filepath.Join(t.TempDir(), "missing.ini")); err == nil {
			t.Error("Load() must fail")
		}
	})
}

func TestSettings_Options(t *testing.T) {
	t.Parallel()

	t.Run("empty settings add nothing", func(t *testing.T) {
		t.Parallel()

		var s config.Settings
		if n := len(s.RegistryOptions()); n != 0 {
			t.Errorf("RegistryOptions() = %d options, want 0", n)
		}
		if n := len(s.TransportOptions()); n != 0 {
			t.Errorf("TransportOptions() = %d options, want 0", n)
		}
		if n := len(config.CacheOptions[string, loadability.StringKey, int](s)); n != 0 {
			t.Errorf("CacheOptions() = %d options, want 0", n)
		}
		if n := len(config.LoaderOptions[string, int](s)); n != 0 {
			t.Errorf("LoaderOptions() = %d options, want 0", n)
		}
	})

	t.Run("lifetime reaches the cache", func(t *testing.T) {
		t.Parallel()

		s := config.Settings{Lifetime: time.Minute}
		c := ttlcache.New(config.CacheOptions[string, loadability.StringKey, int](s)...)
		if got := c.Lifetime(); got != time.Minute {
			t.Errorf("Lifetime() = %v, want %v", got, time.Minute)
		}
	})

	t.Run("capacity bounds the cache", func(t *testing.T) {
		t.Parallel()

		s := config.Settings{Capacity: 10}
		c := ttlcache.New(config.CacheOptions[string, loadability.StringKey, int](s)...)
		for i := range 300 {
			c.Set(loadability.StringKey(strconv.Itoa(i)), i)
		}
		if got := c.Len(); got > 10 {
			t.Errorf("Len() = %d, want at most 10", got)
		}
	})

	t.Run("retention backs the cache with go-cache", func(t *testing.T) {
		t.Parallel()

		s := config.Settings{Retention: time.Hour}
		c := ttlcache.New(config.CacheOptions[string, loadability.StringKey, int](s)...)
		c.Set("a", 1)
		if v, ok := c.Get("a"); !ok || v != 1 {
			t.Errorf("Get() = (%d, %v), want (1, true)", v, ok)
		}
	})

	t.Run("persistent options", func(t *testing.T) {
		t.Parallel()

		s := config.Settings{Lifetime: time.Minute, SaveOnEviction: true}
		opts := config.PersistentOptions[string, loadability.StringKey, int](s)
		opts = append(opts, persistent.WithDirectory[string, loadability.StringKey, int](t.TempDir()))
		c := persistent.New("settings", opts...)
		if got := c.Lifetime(); got != time.Minute {
			t.Errorf("Lifetime() = %v, want %v", got, time.Minute)
		}
	})

	t.Run("all set", func(t *testing.T) {
		t.Parallel()

		s := config.Settings{
			Directory:      t.TempDir(),
			FlushSchedule:  "@every 1h",
			Timeout:        time.Second,
			Attempts:       2,
			BackOffInitial: time.Millisecond,
		}
		if n := len(s.RegistryOptions()); n != 2 {
			t.Errorf("RegistryOptions() = %d options, want 2", n)
		}
		if n := len(s.TransportOptions()); n != 2 {
			t.Errorf("TransportOptions() = %d options, want 2", n)
		}
		if n := len(config.LoaderOptions[string, int](s)); n != 1 {
			t.Errorf("LoaderOptions() = %d options, want 1", n)
		}
	})
}
