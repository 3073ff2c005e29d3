package loadability

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResult is matched by every *EmptyResultError.
var ErrEmptyResult = errors.New("loadability: empty result")

// TransportError is a failure of the transport: the request could not be sent, the response
// could not be read, or the server answered with an error status.
type TransportError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status of the response, or 0 when no response was received.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("loadability: transport: %s: %s: %v", e.URL, http.StatusText(e.StatusCode), e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("loadability: transport: %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	default:
		return fmt.Sprintf("loadability: transport: %s: %v", e.URL, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the request may succeed.
// Failures without a response, 5xx statuses and 429 are temporary.
func (e *TransportError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// DecodeError reports a payload that could not be decoded into the target value.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "loadability: decode: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EmptyResultError reports a successful fetch that produced no usable result.
type EmptyResultError struct {
	// Reason describes what was missing.
	Reason string
}

func (e *EmptyResultError) Error() string {
	if e.Reason == "" {
		return ErrEmptyResult.Error()
	}
	return ErrEmptyResult.Error() + ": " + e.Reason
}

// Is reports whether target is ErrEmptyResult.
func (e *EmptyResultError) Is(target error) bool {
	return target == ErrEmptyResult
}

// PersistenceError is a failure to read or write a persisted cache.
// It never reaches callers of cache operations; it is reported to error handlers only.
type PersistenceError struct {
	// Op is the failed operation: "read", "decode", "encode" or "write".
	Op string

	// Name is the name of the cache.
	Name string

	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("loadability: persistence: %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
