package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/loader/transport"
	"golang.org/x/oauth2"
)

func noDelay() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

// newServer answers with the given statuses in turn, repeating the last one.
func newServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		status := statuses[min(n, len(statuses))-1]
		w.WriteHeader(status)
		_, _ = w.Write([]byte("body"))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_Do(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statuses   []int
		attempts   int
		wantCalls  int32
		wantStatus int
	}{
		{name: "success", statuses: []int{200}, attempts: 3, wantCalls: 1},
		{name: "retry then success", statuses: []int{503, 200}, attempts: 3, wantCalls: 2},
		{name: "too many requests is retried", statuses: []int{429, 429, 204}, attempts: 3, wantCalls: 3},
		{name: "gives up after attempts", statuses: []int{500}, attempts: 3, wantCalls: 3, wantStatus: 500},
		{name: "client error is not retried", statuses: []int{404, 200}, attempts: 3, wantCalls: 1, wantStatus: 404},
		{name: "single attempt", statuses: []int{502, 200}, attempts: 1, wantCalls: 1, wantStatus: 502},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, calls := newServer(t, tt.statuses...)
			client := transport.New(
				transport.WithHTTPClient(srv.Client()),
				transport.WithAttempts(tt.attempts),
				transport.WithBackOff(noDelay),
			)
			req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, nil)
			if err != nil {
				t.Fatal(err)
			}

			body, err := client.Do(t.Context(), req)
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("Do() error = %v", err)
				}
				if string(body) != "body" {
					t.Errorf("Do() = %q, want body", body)
				}
				return
			}

			var terr *loadability.TransportError
			if !errors.As(err, &terr) {
				t.Fatalf("Do() error = %v, want *loadability.TransportError", err)
			}
			if terr.StatusCode != tt.wantStatus || terr.URL != srv.URL {
				t.Errorf("Do() error = %+v, want status %d for %s", terr, tt.wantStatus, srv.URL)
			}
		})
	}
}

func TestClient_Do_ConnectionFailure(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, 200)
	url := srv.URL
	srv.Close()

	client := transport.New(transport.WithBackOff(noDelay))
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.Do(t.Context(), req)
	var terr *loadability.TransportError
	if !errors.As(err, &terr) || terr.StatusCode != 0 || !terr.Temporary() {
		t.Errorf("Do() error = %v, want a temporary *loadability.TransportError", err)
	}
}

func TestClient_Do_Canceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(t.Context())
	client := transport.New(transport.WithHTTPClient(srv.Client()), transport.WithBackOff(noDelay))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	time.AfterFunc(10*time.Millisecond, cancel)
	if _, err := client.Do(ctx, req); !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestClient_Do_RetriesBody(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if string(b) != "payload" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	client := transport.New(transport.WithHTTPClient(srv.Client()), transport.WithBackOff(noDelay))
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, srv.URL, strings.NewReader("payload"))
	if err != nil {
		t.Fatal(err)
	}
	body, err := client.Do(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "ok" || calls.Load() != 2 {
		t.Errorf("Do() = %q after %d calls, want ok after 2", body, calls.Load())
	}
}

func TestWithTokenSource(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("authorized"))
	}))
	t.Cleanup(srv.Close)

	client := transport.New(
		transport.WithHTTPClient(srv.Client()),
		transport.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret"})),
	)
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	body, err := client.Do(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "authorized" {
		t.Errorf("Do() = %q, want authorized", body)
	}
}

func TestWithAttempts(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for zero attempts, but did not panic")
		}
	}()
	transport.WithAttempts(0)
}
