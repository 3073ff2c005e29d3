package gocachestorage_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/storage/gocachestorage"
	"github.com/karupanerura/loadability/storage/storagetest"
)

func TestContract(t *testing.T) {
	t.Parallel()

	provider := func() (loadability.Store[uint8, int8], func()) {
		return gocachestorage.New[uint8, int8](), func() {}
	}
	storagetest.TestAll(t, provider)
	storagetest.TestEviction(t, provider, func(store loadability.Store[uint8, int8], id uint8) {
		store.(*gocachestorage.Storage[uint8, int8]).Evict(id)
	})
}

func TestRetention(t *testing.T) {
	t.Parallel()

	t.Run("janitor reports dropped entries", func(t *testing.T) {
		t.Parallel()

		store := gocachestorage.New[string, int](
			gocachestorage.WithRetention[string](10*time.Millisecond),
			gocachestorage.WithCleanupInterval[string](5*time.Millisecond),
		)
		type evicted struct {
			ID    string
			Value int
		}
		ch := make(chan evicted, 1)
		store.OnEvict(func(id string, v int) {
			ch <- evicted{ID: id, Value: v}
		})
		store.Set("a", 1)

		select {
		case got := <-ch:
			if df := cmp.Diff(evicted{ID: "a", Value: 1}, got); df != "" {
				t.Errorf("evicted diff=%s", df)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("eviction was not reported")
		}
		if _, ok := store.Get("a"); ok {
			t.Error("dropped entry must not exist")
		}
	})

	t.Run("expired entries are hidden before cleanup", func(t *testing.T) {
		t.Parallel()

		store := gocachestorage.New[string, int](
			gocachestorage.WithRetention[string](time.Millisecond),
			gocachestorage.WithCleanupInterval[string](0),
		)
		var count int
		store.OnEvict(func(string, int) { count++ })
		store.Set("a", 1)
		time.Sleep(10 * time.Millisecond)

		if _, ok := store.Get("a"); ok {
			t.Error("expired entry must be hidden")
		}
		if count != 0 {
			t.Errorf("evictions = %d, want 0 before cleanup", count)
		}

		store.DeleteExpired()
		if count != 1 {
			t.Errorf("evictions = %d, want 1 after cleanup", count)
		}
		if n := store.Len(); n != 0 {
			t.Errorf("Len() = %d, want 0", n)
		}
	})
}

func TestKeyEncoder(t *testing.T) {
	t.Parallel()

	type id struct {
		Group string
		N     int
	}
	store := gocachestorage.New[id, string](gocachestorage.WithKeyEncoder(func(k id) string {
		return k.Group + "\x00" + string(rune('0'+k.N))
	}))
	store.Set(id{"a", 1}, "a1")
	store.Set(id{"a", 2}, "a2")

	if v, ok := store.Get(id{"a", 1}); !ok || v != "a1" {
		t.Errorf("Get(a,1) = (%q, %v), want (a1, true)", v, ok)
	}
	if v, ok := store.Get(id{"a", 2}); !ok || v != "a2" {
		t.Errorf("Get(a,2) = (%q, %v), want (a2, true)", v, ok)
	}
}
