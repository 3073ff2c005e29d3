// Command loadability fetches JSON documents through a persistent cache.
//
// Usage:
//
//	loadability -url 'https://api.example.com/articles/{key}' [-config loadability.ini] [-refresh] key...
//
// Each document is printed on its own line, preceded by its key. Documents still fresh in the
// cache are not fetched again unless -refresh is given. With -watch the command keeps running,
// reloads every key at the given interval and prints documents again whenever they change.
// When LOADABILITY_TOKEN is set it is sent as a bearer token.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang/glog"
	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/config"
	"github.com/karupanerura/loadability/loader"
	"github.com/karupanerura/loadability/loader/intervalupdater"
	"github.com/karupanerura/loadability/loader/transport"
	"github.com/karupanerura/loadability/shared"
	"golang.org/x/oauth2"
)

const tokenEnv = "LOADABILITY_TOKEN"

var (
	configPath  = flag.String("config", "", "path of the settings file")
	cacheName   = flag.String("name", "documents", "name the cache is persisted under")
	urlTemplate = flag.String("url", "", "URL of a document, {key} is replaced by the escaped key")
	refresh     = flag.Bool("refresh", false, "fetch every key even when its cached document is fresh")
	watch       = flag.Duration("watch", 0, "reload every key at this interval until interrupted")
	closeTime   = flag.Duration("close_timeout", 30*time.Second, "how long to wait for the cache to be written on exit")
)

type engine = loader.CachingEngine[loadability.StringKey, json.RawMessage]

func main() {
	flag.Parse()

	if err := run(); err != nil {
		glog.Error(err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

func run() error {
	if *urlTemplate == "" || flag.NArg() == 0 {
		flag.Usage()
		return errors.New("-url and at least one key are required")
	}

	var settings config.Settings
	if *configPath != "" {
		s, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		settings = s
	}
	if glog.V(2) {
		glog.Infof("settings: %+v", settings)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := shared.NewRegistry(settings.RegistryOptions()...)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), *closeTime)
		defer cancel()
		if err := registry.Close(ctx); err != nil {
			glog.Errorf("close cache: %v", err)
		}
	}()

	documents := shared.Open(registry, *cacheName,
		config.PersistentOptions[string, loadability.StringKey, json.RawMessage](settings)...)

	transportOptions := settings.TransportOptions()
	if token := os.Getenv(tokenEnv); token != "" {
		transportOptions = append(transportOptions, transport.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})))
	}
	fetcher := &loader.NetworkFetcher[loadability.StringKey, json.RawMessage]{
		Request: loader.GetRequest(func(key loadability.StringKey) string {
			return strings.ReplaceAll(*urlTemplate, "{key}", url.PathEscape(string(key)))
		}),
		Client: transport.New(transportOptions...),
	}
	newEngine := func() *engine {
		return loader.NewCaching[loadability.StringKey, json.RawMessage](fetcher, documents, config.LoaderOptions[loadability.StringKey, json.RawMessage](settings)...)
	}

	if *watch > 0 {
		return watchKeys(ctx, newEngine)
	}
	return loadKeys(ctx, newEngine())
}

func loadKeys(ctx context.Context, e *engine) error {
	var failed int
	for _, arg := range flag.Args() {
		key := loadability.StringKey(arg)
		load := e.Load
		if *refresh {
			load = e.Refresh
		}

		doc, err := load(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			glog.Errorf("%s: %v", key, err)
			failed++
			continue
		}
		fmt.Printf("%s\t%s\n", key, doc)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d keys failed", failed, flag.NArg())
	}
	return nil
}

// watchKeys runs one engine per key, since an engine serves a single flight at a time.
func watchKeys(ctx context.Context, newEngine func() *engine) error {
	var wg sync.WaitGroup
	for _, arg := range flag.Args() {
		key := loadability.StringKey(arg)
		e := newEngine()

		updates, unsubscribe := e.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last json.RawMessage
			for snapshot := range updates {
				if snapshot.State != loader.StateSucceeded || bytes.Equal(last, snapshot.Object) {
					continue
				}
				last = snapshot.Object
				fmt.Printf("%s\t%s\n", key, snapshot.Object)
			}
		}()
		context.AfterFunc(ctx, unsubscribe)

		if *refresh {
			if _, err := e.Refresh(ctx, key); err != nil && ctx.Err() == nil {
				glog.Errorf("%s: %v", key, err)
			}
		}
		updater := intervalupdater.NewIntervalUpdater[loadability.StringKey, json.RawMessage](e, key, *watch, func(err error) {
			glog.Errorf("%s: %v", key, err)
		})
		updater.LaunchBackgroundUpdater(ctx)
	}

	<-ctx.Done()
	wg.Wait()
	return nil
}
