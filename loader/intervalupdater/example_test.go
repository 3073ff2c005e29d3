package intervalupdater_test

import (
	"context"
	"log"
	"time"

	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/loader"
	"github.com/karupanerura/loadability/loader/intervalupdater"
	"github.com/karupanerura/loadability/ttlcache"
)

func Example() {
	fetcher := loadability.FetchFunc[loadability.GenericKey, string](func(context.Context, loadability.GenericKey) (string, error) {
		return "settings", nil
	})
	engine := loader.NewCaching[loadability.GenericKey, string](fetcher, ttlcache.New[string, loadability.GenericKey, string]())

	updater := intervalupdater.NewIntervalUpdater[loadability.GenericKey, string](engine, loadability.GenericKey{}, time.Minute, func(err error) {
		log.Printf("background updater error: %v", err)
	})
	updater.LaunchBackgroundUpdater(context.Background())
}
