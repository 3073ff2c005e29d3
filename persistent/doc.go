// Package persistent provides a TTL cache that keeps a snapshot of its live entries on disk.
//
// Every insert or removal updates an in-memory ledger of live keys and schedules a background
// write of the whole snapshot to <name>.cache. Writes are not transactional: a crash between a
// mutation and its write leaves the file one or more mutations behind, which is acceptable for
// data that can be fetched again. A failed read or write is reported to the error handler and
// never to the caller.
package persistent
