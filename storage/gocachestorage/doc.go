// Package gocachestorage provides a loadability.Store backed by github.com/patrickmn/go-cache.
//
// The store can drop entries on its own after a retention period. Such entries are reported to the
// eviction listener from the go-cache janitor goroutine, so a persistent cache built on top of it can
// observe entries vanishing outside of its own operations.
package gocachestorage
