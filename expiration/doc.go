// Package expiration provides the staleness policies of caches.
//
// A Policy judges an entry that is present in a cache; an absent key is stale by definition and never reaches
// the policy. Strict is the default used by ttlcache. Never and Early exist for caches that only go stale on
// removal and for spreading refetches of hot keys, respectively.
package expiration
