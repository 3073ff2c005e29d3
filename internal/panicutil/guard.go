// Package panicutil runs functions on their own goroutine without letting panics or runtime.Goexit escape.
package panicutil

import (
	"errors"

	"github.com/sourcegraph/conc/panics"
)

// ErrGoexit is reported when the function called runtime.Goexit.
var ErrGoexit = errors.New("runtime.Goexit is called")

// Go runs f on a new goroutine and reports its outcome to done exactly once.
// The outcome is the error f returned, a *panics.ErrRecovered when f panicked,
// or ErrGoexit when f called runtime.Goexit.
func Go(f func() error, done func(error)) {
	go func() {
		reported := false
		report := func(err error) {
			if !reported {
				reported = true
				done(err)
			}
		}
		// runs after a normal return too, where it is a no-op
		defer report(ErrGoexit)
		report(call(f))
	}()
}

// Call runs f on the calling goroutine, converting a panic into *panics.ErrRecovered.
// runtime.Goexit is not intercepted.
func Call(f func() error) error {
	return call(f)
}

func call(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			rec := panics.NewRecovered(1, r)
			err = rec.AsError()
		}
	}()
	return f()
}
