package loader

import "fmt"

// State is the lifecycle state of an Engine.
type State int

const (
	// StateIdle means no fetch has completed since creation, cancellation or error dismissal.
	StateIdle State = iota

	// StateLoading means a fetch is in flight.
	StateLoading

	// StateSucceeded means the last fetch or cache lookup published an object.
	StateSucceeded

	// StateFailed means the last fetch published an error.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is the published state of an Engine at one point in time.
// The object and the error are independent: a failed fetch keeps the previous object.
type Snapshot[V any] struct {
	State State

	// Object is the published object, valid when HasObject is true.
	Object    V
	HasObject bool

	// Err is the published error of the last failed fetch, if not cleared since.
	Err error
}
