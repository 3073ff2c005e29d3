// Package memstorage provides an in-memory implementation of the loadability.Store interface.
//
// Entries are distributed across multiple buckets by the hash of their identity, so unrelated keys
// rarely contend on the same lock. A capacity turns every bucket into a small LRU; entries dropped
// that way are reported to the eviction listener after the bucket lock is released.
package memstorage
