package loader

import (
	"context"
	"errors"
	"net/http"

	"github.com/karupanerura/loadability"
	"github.com/karupanerura/loadability/loader/transport"
)

// RequestFunc builds the request fetching key.
type RequestFunc[K any] func(ctx context.Context, key K) (*http.Request, error)

// GetRequest returns a RequestFunc issuing a GET to the URL built by url.
func GetRequest[K any](url func(K) string) RequestFunc[K] {
	return func(ctx context.Context, key K) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url(key), nil)
	}
}

// NetworkFetcher fetches a value over HTTP: it builds a request, sends it through a retrying
// transport and decodes the payload.
type NetworkFetcher[K any, V loadability.ValueConstraint] struct {
	// Request builds the request for a key.
	Request RequestFunc[K]

	// Decoder decodes the payload. JSONDecoder is used when nil.
	Decoder Decoder[K, V]

	// Client sends the request. A client with the default options is used when nil.
	Client *transport.Client
}

var _ loadability.Fetchable[struct{}, struct{}] = (*NetworkFetcher[struct{}, struct{}])(nil)

// Fetch returns the decoded value for key.
// Transport failures are *loadability.TransportError; payloads that cannot be decoded are *loadability.DecodeError.
func (f *NetworkFetcher[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	var zero V

	req, err := f.Request(ctx, key)
	if err != nil {
		return zero, err
	}

	client := f.Client
	if client == nil {
		client = transport.Default
	}
	data, err := client.Do(ctx, req)
	if err != nil {
		return zero, err
	}

	// canceled while the payload was read
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	var decoder Decoder[K, V] = JSONDecoder[K, V]{}
	if f.Decoder != nil {
		decoder = f.Decoder
	}
	v, err := decoder.Decode(data, key)
	if err != nil {
		var empty *loadability.EmptyResultError
		if errors.As(err, &empty) {
			return zero, err
		}
		return zero, &loadability.DecodeError{Err: err}
	}
	return v, nil
}
