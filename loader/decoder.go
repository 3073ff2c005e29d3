package loader

import (
	"github.com/goccy/go-json"
	"github.com/karupanerura/loadability"
)

// Decoder maps a fetched payload and the requested key to a value.
type Decoder[K any, V loadability.ValueConstraint] interface {
	Decode(data []byte, key K) (V, error)
}

// DecoderFunc is a function type that implements the Decoder interface.
type DecoderFunc[K any, V loadability.ValueConstraint] func(data []byte, key K) (V, error)

// Decode calls the function.
func (f DecoderFunc[K, V]) Decode(data []byte, key K) (V, error) {
	return f(data, key)
}

// JSONDecoder decodes a JSON payload into V. It is the default decoder of NetworkFetcher.
type JSONDecoder[K any, V loadability.ValueConstraint] struct{}

func (JSONDecoder[K, V]) Decode(data []byte, _ K) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}

// FirstElement decodes a list with d and returns its first element.
// An empty list is a *loadability.EmptyResultError.
func FirstElement[K any, V loadability.ValueConstraint](d Decoder[K, []V]) Decoder[K, V] {
	return DecoderFunc[K, V](func(data []byte, key K) (V, error) {
		list, err := d.Decode(data, key)
		if err != nil {
			var zero V
			return zero, err
		}
		if len(list) == 0 {
			var zero V
			return zero, &loadability.EmptyResultError{Reason: "empty list"}
		}
		return list[0], nil
	})
}

// NonEmpty decodes a list with d and rejects an empty one with a *loadability.EmptyResultError.
func NonEmpty[K any, V loadability.ValueConstraint](d Decoder[K, []V]) Decoder[K, []V] {
	return DecoderFunc[K, []V](func(data []byte, key K) ([]V, error) {
		list, err := d.Decode(data, key)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, &loadability.EmptyResultError{Reason: "empty list"}
		}
		return list, nil
	})
}
