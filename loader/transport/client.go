// Package transport sends HTTP requests with a bounded number of attempts.
//
// Failures without a response, 5xx statuses and 429 are retried with a backoff; other statuses fail at once.
// Every failure is a *loadability.TransportError, except a canceled context, which is returned as is.
package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
	"github.com/karupanerura/loadability"
	"golang.org/x/oauth2"
)

// Default is the client with the default options.
var Default = New()

// Client sends requests and returns their payload.
type Client struct {
	httpClient *http.Client
	options    options
}

// New creates a new client.
func New(opts ...Option) *Client {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}

	httpClient := options.httpClient
	if options.tokenSource != nil {
		httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: options.tokenSource,
				Base:   httpClient.Transport,
			},
			CheckRedirect: httpClient.CheckRedirect,
			Jar:           httpClient.Jar,
			Timeout:       httpClient.Timeout,
		}
	}
	return &Client{
		httpClient: httpClient,
		options:    options,
	}
}

// Do sends req under ctx and returns the body of its 2xx response.
// The request body, if any, must be rewindable through req.GetBody to be retried.
func (c *Client) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	var body []byte
	operation := func() error {
		data, err := c.send(ctx, req)
		if err != nil {
			return err
		}
		body = data
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.options.newBackOff(), uint64(c.options.attempts-1)), ctx)
	notify := func(err error, d time.Duration) {
		glog.V(2).Infof("loadability: retrying %s in %s: %v", req.URL, d, err)
	}
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, req *http.Request) ([]byte, error) {
	r := req.Clone(ctx)
	if req.Body != nil && req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, backoff.Permanent(&loadability.TransportError{URL: req.URL.String(), Err: err})
		}
		r.Body = rc
	}

	resp, err := c.httpClient.Do(r)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		return nil, &loadability.TransportError{URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		return nil, &loadability.TransportError{URL: req.URL.String(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		terr := &loadability.TransportError{URL: req.URL.String(), StatusCode: resp.StatusCode}
		if !terr.Temporary() {
			return nil, backoff.Permanent(terr)
		}
		return nil, terr
	}
	return data, nil
}
