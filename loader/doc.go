// Package loader coordinates asynchronous fetches of a single published object.
//
// An Engine runs at most one fetch at a time. Load calls made while a fetch is in flight
// join it and observe its outcome, whatever key they pass. A failed fetch publishes its
// error and keeps the previously published object, so consumers can show stale data and
// the error together. State changes are delivered to subscribers as Snapshots.
//
// A CachingEngine adds a cache in front of the fetch: a fresh cached value is published
// without fetching, and every fetched value is written through to the cache.
//
// Fetches come from a loadability.Fetchable. NetworkFetcher is the declarative one: it
// builds a request, sends it through a retrying transport and decodes the payload.
package loader
