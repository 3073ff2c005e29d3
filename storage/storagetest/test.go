// storagetest package provides generic test cases for loadability.Store implementations.
package storagetest

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/loadability"
	"golang.org/x/sync/errgroup"
)

// Provider creates a fresh store for a test case and a function releasing it.
type Provider func() (loadability.Store[uint8, int8], func())

// BenchmarkSet benchmarks the Set method of the store.
func BenchmarkSet[ID comparable, E any](b *testing.B, store loadability.Store[ID, E], ids []ID) {
	var zero E
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Set(ids[i%len(ids)], zero)
	}
}

type pair struct {
	ID    uint8
	Value int8
}

var consistencyPatterns = []pair{
	{0, 1},
	{1, 2},
	{2, 3},
	{3, 4},
	{4, 5},
	{251, 124},
	{252, 125},
	{253, 126},
	{254, 127},
	{255, -128},
}

// TestConsistency checks that concurrent writers and readers observe every entry exactly as written.
func TestConsistency(t *testing.T, provider Provider) {
	t.Run("Consistency", func(t *testing.T) {
		t.Parallel()

		store, release := provider()
		defer release()

		patterns := slices.Clone(consistencyPatterns)
		rand.Shuffle(len(patterns), func(i, j int) {
			patterns[i], patterns[j] = patterns[j], patterns[i]
		})

		var eg errgroup.Group
		for _, pattern := range patterns {
			eg.Go(func() error {
				if _, ok := store.Get(pattern.ID); ok {
					return fmt.Errorf("unexpected exists value for id %d", pattern.ID)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		eg = errgroup.Group{}
		for _, pattern := range patterns {
			eg.Go(func() error {
				store.Set(pattern.ID, pattern.Value)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		eg = errgroup.Group{}
		got := make([]pair, len(patterns))
		for i, pattern := range patterns {
			eg.Go(func() error {
				v, ok := store.Get(pattern.ID)
				if !ok {
					return fmt.Errorf("missing value for id %d", pattern.ID)
				}
				got[i] = pair{ID: pattern.ID, Value: v}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		if df := cmp.Diff(patterns, got); df != "" {
			t.Errorf("entries diff=%s", df)
		}
		if n := store.Len(); n != len(patterns) {
			t.Errorf("Len() = %d, want %d", n, len(patterns))
		}
	})
}

// TestOverwrite checks that setting an existing identity replaces its value without growing the store.
func TestOverwrite(t *testing.T, provider Provider) {
	t.Run("Overwrite", func(t *testing.T) {
		t.Parallel()

		store, release := provider()
		defer release()

		store.Set(1, 1)
		store.Set(1, 2)
		if v, ok := store.Get(1); !ok || v != 2 {
			t.Errorf("Get(1) = (%d, %v), want (2, true)", v, ok)
		}
		if n := store.Len(); n != 1 {
			t.Errorf("Len() = %d, want 1", n)
		}
	})
}

// TestDelete checks that explicit deletion removes entries without reporting evictions.
func TestDelete(t *testing.T, provider Provider) {
	t.Run("Delete", func(t *testing.T) {
		t.Parallel()

		store, release := provider()
		defer release()

		var mu sync.Mutex
		var evicted []uint8
		store.OnEvict(func(id uint8, _ int8) {
			mu.Lock()
			defer mu.Unlock()
			evicted = append(evicted, id)
		})

		store.Set(1, 1)
		store.Set(2, 2)
		if !store.Delete(1) {
			t.Error("Delete(1) = false, want true")
		}
		if store.Delete(1) {
			t.Error("second Delete(1) = true, want false")
		}
		if _, ok := store.Get(1); ok {
			t.Error("deleted entry must not exist")
		}
		if v, ok := store.Get(2); !ok || v != 2 {
			t.Errorf("Get(2) = (%d, %v), want (2, true)", v, ok)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(evicted) != 0 {
			t.Errorf("Delete must not report evictions, got %v", evicted)
		}
	})
}

// TestClear checks that Clear empties the store without reporting evictions.
func TestClear(t *testing.T, provider Provider) {
	t.Run("Clear", func(t *testing.T) {
		t.Parallel()

		store, release := provider()
		defer release()

		var mu sync.Mutex
		var evicted []uint8
		store.OnEvict(func(id uint8, _ int8) {
			mu.Lock()
			defer mu.Unlock()
			evicted = append(evicted, id)
		})

		for _, pattern := range consistencyPatterns {
			store.Set(pattern.ID, pattern.Value)
		}
		store.Clear()
		if n := store.Len(); n != 0 {
			t.Errorf("Len() = %d, want 0", n)
		}
		for _, pattern := range consistencyPatterns {
			if _, ok := store.Get(pattern.ID); ok {
				t.Errorf("id %d must not exist after Clear", pattern.ID)
			}
		}

		store.Set(1, 1)
		if v, ok := store.Get(1); !ok || v != 1 {
			t.Errorf("Get(1) = (%d, %v), want (1, true) after Clear", v, ok)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(evicted) != 0 {
			t.Errorf("Clear must not report evictions, got %v", evicted)
		}
	})
}

// TestEviction checks that an entry dropped by the store itself is reported to the eviction listener
// and is gone once reported. evict makes the store drop the entry for the given id.
func TestEviction(t *testing.T, provider Provider, evict func(store loadability.Store[uint8, int8], id uint8)) {
	t.Run("Eviction", func(t *testing.T) {
		t.Parallel()

		store, release := provider()
		defer release()

		type evicted struct {
			ID    uint8
			Value int8
		}
		ch := make(chan evicted, 1)
		store.OnEvict(func(id uint8, v int8) {
			// the listener must be callable with the store lock released
			_ = store.Len()
			ch <- evicted{ID: id, Value: v}
		})

		store.Set(1, 10)
		store.Set(2, 20)
		evict(store, 1)

		got := <-ch
		if df := cmp.Diff(evicted{ID: 1, Value: 10}, got); df != "" {
			t.Errorf("evicted diff=%s", df)
		}
		if _, ok := store.Get(1); ok {
			t.Error("evicted entry must not exist")
		}
		if v, ok := store.Get(2); !ok || v != 20 {
			t.Errorf("Get(2) = (%d, %v), want (20, true)", v, ok)
		}
	})
}

// TestAll runs every contract test that does not need a way to force evictions.
func TestAll(t *testing.T, provider Provider) {
	TestConsistency(t, provider)
	TestOverwrite(t, provider)
	TestDelete(t, provider)
	TestClear(t, provider)
}
