package expiration

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Policy is the staleness predicate of a cache.
// A key without an entry is always stale; a Policy only judges present entries.
type Policy interface {
	// IsStale reports whether an entry expiring at expiresAt is stale at now.
	IsStale(now, expiresAt time.Time) bool
}

// PolicyFunc is a function type that implements the Policy interface.
type PolicyFunc func(now, expiresAt time.Time) bool

// IsStale calls the function.
func (f PolicyFunc) IsStale(now, expiresAt time.Time) bool {
	return f(now, expiresAt)
}

// Strict is the default policy: an entry is stale once now is strictly after its expiration time.
type Strict struct{}

var _ Policy = Strict{}

// IsStale returns now > expiresAt.
func (Strict) IsStale(now, expiresAt time.Time) bool {
	return now.After(expiresAt)
}

// Never is a policy under which present entries never go stale.
// Only removal or eviction makes a key stale again.
type Never struct{}

var _ Policy = Never{}

// IsStale always returns false.
func (Never) IsStale(time.Time, time.Time) bool {
	return false
}

// Early is a policy that may report an entry stale up to Duration before it expires.
// Spreading refreshes over that window keeps many loaders from refetching the same data at once.
type Early struct {
	// Duration is how much earlier the entry can go stale.
	Duration time.Duration

	// Percentage is the chance (between 0 and 1) that a check uses the early deadline.
	Percentage float64

	// Random decides each check. If nil, the default system random generator is used.
	Random *rand.Rand

	mu sync.Mutex
}

var _ Policy = (*Early)(nil)

// IsStale behaves like Strict with probability 1-Percentage, and otherwise checks now+Duration > expiresAt.
func (p *Early) IsStale(now, expiresAt time.Time) bool {
	if p.randFloat64() > p.Percentage {
		return now.After(expiresAt)
	}
	return now.Add(p.Duration).After(expiresAt)
}

func (p *Early) randFloat64() float64 {
	if p.Random == nil {
		return rand.Float64()
	}

	// *rand.Rand is not safe for concurrent use
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Random.Float64()
}
