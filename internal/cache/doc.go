// Package cache provides a layered, expiring key-value cache over three
// storage tiers: an in-process map, a persistent on-disk store, and a
// session-scoped store. Entries carry a time-to-live and expire lazily
// on read; pattern-based invalidation and a read-through helper round
// out the API. Caching here is always a best-effort optimization, never
// a correctness dependency.
package cache
