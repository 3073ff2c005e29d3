package memstorage

// DefaultBucketsSize is the default number of buckets in the store.
var DefaultBucketsSize = 256

// Option is the interface for the options of the in-memory store.
type Option[ID comparable] interface {
	apply(*options[ID])
}

type optionFunc[ID comparable] func(*options[ID])

func (f optionFunc[ID]) apply(o *options[ID]) {
	f(o)
}

// WithKeyHash sets the hash function used to pick the bucket of an identity.
func WithKeyHash[ID comparable](f func(ID) uint64) Option[ID] {
	return optionFunc[ID](func(o *options[ID]) {
		o.hashKey = f
	})
}

// WithBucketsSize sets the number of buckets in the store.
// The number of buckets must be a natural number.
func WithBucketsSize[ID comparable](bucketsSize int) Option[ID] {
	if bucketsSize <= 0 {
		panic("bucketSize must be natural number")
	}
	return optionFunc[ID](func(o *options[ID]) {
		o.bucketsSize = bucketsSize
	})
}

// WithCapacity bounds the number of entries the store keeps.
// The capacity is split across buckets and each bucket evicts its least recently used entries past its share,
// so the store never holds more than capacity entries. A capacity below the number of buckets reduces the
// number of buckets to the capacity. Zero means unbounded.
func WithCapacity[ID comparable](capacity int) Option[ID] {
	if capacity < 0 {
		panic("capacity must not be negative")
	}
	return optionFunc[ID](func(o *options[ID]) {
		o.capacity = capacity
	})
}

type options[ID comparable] struct {
	hashKey     func(ID) uint64
	bucketsSize int
	capacity    int
}

func defaultOptions[ID comparable]() options[ID] {
	return options[ID]{
		hashKey:     defaultHashKey[ID](),
		bucketsSize: DefaultBucketsSize,
	}
}
