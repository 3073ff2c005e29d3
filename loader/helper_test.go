package loader_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// gatedFetcher returns values from results in turn once each fetch is released.
type gatedFetcher struct {
	calls   atomic.Int32
	started chan string
	release chan struct{}
	results []func(ctx context.Context) (string, error)
}

func newGatedFetcher(results ...func(ctx context.Context) (string, error)) *gatedFetcher {
	return &gatedFetcher{
		started: make(chan string, 16),
		release: make(chan struct{}),
		results: results,
	}
}

func (f *gatedFetcher) Fetch(ctx context.Context, key string) (string, error) {
	n := int(f.calls.Add(1))
	f.started <- key
	select {
	case <-f.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return f.results[min(n, len(f.results))-1](ctx)
}

// open makes every fetch proceed without waiting.
func (f *gatedFetcher) open() {
	close(f.release)
}

func value(v string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		return v, nil
	}
}

func failure(err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		return "", err
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitWaiters(t *testing.T, e interface{ Waiters() int }, n int) {
	t.Helper()
	waitFor(t, "waiters", func() bool {
		return e.Waiters() == n
	})
}

type outcome struct {
	value string
	err   error
}

func loadAsync(ctx context.Context, load func(context.Context, string) (string, error), key string) <-chan outcome {
	ch := make(chan outcome, 1)
	go func() {
		v, err := load(ctx, key)
		ch <- outcome{value: v, err: err}
	}()
	return ch
}
