package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// KeyPrefix marks every key this cache writes into a shared (persistent
// or session) namespace, so the cache can identify and sweep its own
// entries without disturbing unrelated data stored alongside them.
const KeyPrefix = "cache:"

// Common errors for cache operations.
var (
	// ErrUnknownTier is returned when an operation names a tier that
	// does not exist.
	ErrUnknownTier = errors.New("unknown cache tier")

	// ErrClosed is returned when an operation is attempted on a closed
	// manager.
	ErrClosed = errors.New("cache manager is closed")
)

// Tier selects one of the three backing stores. All tiers expose the
// identical Entry-based contract; only persistence and lifetime
// semantics differ.
type Tier int

const (
	// TierEphemeral is the in-process store. It lives for the lifetime
	// of the process and owns its whole namespace.
	TierEphemeral Tier = iota

	// TierPersistent is the on-disk store. It survives across sessions.
	TierPersistent

	// TierSession is the session-scoped store. It survives manager
	// restarts within one session and is removed when the session ends.
	TierSession
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierEphemeral:
		return "ephemeral"
	case TierPersistent:
		return "persistent"
	case TierSession:
		return "session"
	default:
		return "unknown"
	}
}

// ParseTier converts a tier name to a Tier.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "ephemeral":
		return TierEphemeral, nil
	case "persistent":
		return TierPersistent, nil
	case "session":
		return TierSession, nil
	default:
		return 0, ErrUnknownTier
	}
}

// Tiers lists all tiers in a fixed order.
func Tiers() []Tier {
	return []Tier{TierEphemeral, TierPersistent, TierSession}
}

// Entry wraps a cached value with its creation time and time-to-live.
// An entry has exactly two states, live and expired, with a one-way,
// time-triggered transition once now exceeds CreatedAt+TTL.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	CreatedAt int64           `json:"createdAt"` // ms since epoch
	TTLMs     int64           `json:"ttl"`       // ms
}

// Expired reports whether the entry's time-to-live has elapsed at now.
func (e Entry) Expired(now time.Time) bool {
	return now.UnixMilli() > e.CreatedAt+e.TTLMs
}

// Stats holds per-store counters.
type Stats struct {
	Items     int64 // Number of entries in the store
	SizeBytes int64 // Bytes held (serialized size for file stores)
	Hits      int64 // Lookups that found an entry
	Misses    int64 // Lookups that found nothing
}

// Store is the uniform contract implemented by each tier. Stores know
// nothing about expiry; the manager evaluates TTLs lazily on read.
type Store interface {
	// Get returns the entry for key, if present.
	Get(key string) (Entry, bool)

	// Set writes an entry under key, replacing any previous entry.
	Set(key string, e Entry) error

	// Delete removes the entry for key. Deleting a missing key is not
	// an error.
	Delete(key string) error

	// Clear removes every entry this cache owns in the store.
	Clear() error

	// Keys returns the keys of all entries this cache owns.
	Keys() []string

	// Stats returns store counters.
	Stats() Stats
}
