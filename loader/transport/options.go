package transport

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
)

// DefaultAttempts is the default number of attempts of a request.
const DefaultAttempts = 3

// DefaultInitialInterval is the default delay before the first retry.
const DefaultInitialInterval = 100 * time.Millisecond

// Option is the interface for the options of the Client.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithHTTPClient sets the HTTP client sending the requests.
func WithHTTPClient(c *http.Client) Option {
	return optionFunc(func(o *options) {
		o.httpClient = c
	})
}

// WithAttempts sets how many times a request is sent before giving up.
// The number of attempts must be a natural number.
func WithAttempts(attempts int) Option {
	if attempts <= 0 {
		panic("attempts must be natural number")
	}
	return optionFunc(func(o *options) {
		o.attempts = attempts
	})
}

// WithBackOff sets the function creating the delay policy between attempts of one request.
func WithBackOff(f func() backoff.BackOff) Option {
	return optionFunc(func(o *options) {
		o.newBackOff = f
	})
}

// WithTokenSource authorizes every request with tokens from ts.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return optionFunc(func(o *options) {
		o.tokenSource = ts
	})
}

// ExponentialBackOff returns a backoff factory whose delays start at initial and grow exponentially.
func ExponentialBackOff(initial time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initial
		return b
	}
}

type options struct {
	httpClient  *http.Client
	attempts    int
	newBackOff  func() backoff.BackOff
	tokenSource oauth2.TokenSource
}

func defaultOptions() options {
	return options{
		httpClient: http.DefaultClient,
		attempts:   DefaultAttempts,
		newBackOff: ExponentialBackOff(DefaultInitialInterval),
	}
}
