package ttlcache_test

import (
	"fmt"
	"time"

	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/ttlcache"
)

func ExampleCache() {
	clock := loadability.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	cache := ttlcache.New(
		ttlcache.WithLifetime[string, loadability.StringKey, int](time.Hour),
		ttlcache.WithClock[string, loadability.StringKey, int](clock),
	)
	cache.Set("a", 1)

	clock.Advance(90 * time.Minute)
	v, ok := cache.Get("a")
	fmt.Println(v, ok, cache.IsStale("a"))
	// Output: 1 true true
}
