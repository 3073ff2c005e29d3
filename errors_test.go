package loadability_test

import (
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/karupanerura/loadability"
)

func TestTransportError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       *loadability.TransportError
		temporary bool
		message   string
	}{
		{
			name:      "no response",
			err:       &loadability.TransportError{URL: "http://example.com", Err: io.ErrUnexpectedEOF},
			temporary: true,
			message:   "loadability: transport: http://example.com: unexpected EOF",
		},
		{
			name:      "server error",
			err:       &loadability.TransportError{URL: "http://example.com", StatusCode: http.StatusBadGateway},
			temporary: true,
			message:   "loadability: transport: http://example.com: 502 Bad Gateway",
		},
		{
			name:      "too many requests",
			err:       &loadability.TransportError{URL: "http://example.com", StatusCode: http.StatusTooManyRequests},
			temporary: true,
			message:   "loadability: transport: http://example.com: 429 Too Many Requests",
		},
		{
			name:      "not found",
			err:       &loadability.TransportError{URL: "http://example.com", StatusCode: http.StatusNotFound},
			temporary: false,
			message:   "loadability: transport: http://example.com: 404 Not Found",
		},
		{
			name:      "status with cause",
			err:       &loadability.TransportError{URL: "http://example.com", StatusCode: http.StatusOK, Err: io.ErrUnexpectedEOF},
			temporary: false,
			message:   "loadability: transport: http://example.com: OK: unexpected EOF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Temporary(); got != tt.temporary {
				t.Errorf("Temporary() = %v, want %v", got, tt.temporary)
			}
			if got := tt.err.Error(); got != tt.message {
				t.Errorf("Error() = %q, want %q", got, tt.message)
			}
			if tt.err.Err != nil && !errors.Is(tt.err, tt.err.Err) {
				t.Error("the cause must be unwrapped")
			}
		})
	}
}

func TestEmptyResultError(t *testing.T) {
	t.Parallel()

	var err error = &loadability.EmptyResultError{Reason: "empty list"}
	if !errors.Is(err, loadability.ErrEmptyResult) {
		t.Error("EmptyResultError must match ErrEmptyResult")
	}
	if got, want := err.Error(), "loadability: empty result: empty list"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := (&loadability.EmptyResultError{}).Error(), "loadability: empty result"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	cause := errors.New("unexpected token")
	err := &loadability.DecodeError{Err: cause}
	if !errors.Is(err, cause) {
		t.Error("the cause must be unwrapped")
	}
}

func TestPersistenceError(t *testing.T) {
	t.Parallel()

	err := &loadability.PersistenceError{Op: "read", Name: "articles", Err: io.ErrUnexpectedEOF}
	if got, want := err.Error(), `loadability: persistence: read "articles": unexpected EOF`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("the cause must be unwrapped")
	}
}
