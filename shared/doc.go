// Package shared provides process-wide persistent caches, one per key and value type pair.
//
// A Registry is created once at process start and handed to every consumer. Open returns the
// Facade for a type pair; the persistent cache behind it is loaded on first use, exactly once.
// Close the registry at shutdown to write the final snapshots.
package shared
