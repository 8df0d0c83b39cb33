package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Config holds configuration for a cache manager.
type Config struct {
	// Dir is the base directory for the file-backed tiers. The
	// persistent tier lives in Dir/persistent, session tiers in
	// Dir/sessions/<id>.
	Dir string

	// SessionID scopes the session tier. Re-creating a manager with
	// the same ID resumes the same session store; Close ends the
	// session and removes it.
	SessionID string

	// SweepInterval, when positive, starts a background sweep that
	// removes expired ephemeral entries. Zero disables the sweep; lazy
	// expiry on read still applies.
	SweepInterval time.Duration

	// Logger receives warnings for swallowed storage failures.
	// Defaults to log.Default().
	Logger *log.Logger

	// Now is the clock used for entry creation and expiry checks.
	// Defaults to time.Now. Tests substitute a fake clock.
	Now func() time.Time
}

// Manager coordinates the three cache tiers behind a single get/set/
// remove/clear surface with lazy TTL expiry and pattern invalidation.
// It is an application-lifetime object that callers pass by reference;
// there is no package-level instance.
type Manager struct {
	ephemeral  *MemoryStore
	persistent *FileStore
	session    *FileStore
	sessionDir string

	now    func() time.Time
	logger *log.Logger

	mu     sync.Mutex
	closed bool

	sweepTicker *time.Ticker
	sweepStop   chan struct{}
	sweepWg     sync.WaitGroup
}

// NewManager creates a cache manager with all three tiers ready.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SessionID == "" {
		cfg.SessionID = "default"
	}

	persistent, err := NewFileStore(filepath.Join(cfg.Dir, "persistent"))
	if err != nil {
		return nil, err
	}

	sessionDir := filepath.Join(cfg.Dir, "sessions", cfg.SessionID)
	session, err := NewFileStore(sessionDir)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		ephemeral:  NewMemoryStore(),
		persistent: persistent,
		session:    session,
		sessionDir: sessionDir,
		now:        cfg.Now,
		logger:     cfg.Logger,
		sweepStop:  make(chan struct{}),
	}

	if cfg.SweepInterval > 0 {
		m.startSweep(cfg.SweepInterval)
	}

	return m, nil
}

// store returns the backing store for a tier.
func (m *Manager) store(tier Tier) Store {
	switch tier {
	case TierPersistent:
		return m.persistent
	case TierSession:
		return m.session
	default:
		return m.ephemeral
	}
}

// storeKey applies the reserved prefix for keys written into shared
// namespaces. The ephemeral tier owns its namespace and stays
// unprefixed.
func storeKey(key string, tier Tier) string {
	if tier == TierEphemeral || strings.HasPrefix(key, KeyPrefix) {
		return key
	}
	return KeyPrefix + key
}

// GetRaw looks up key in the selected tier. An entry past its TTL is
// treated as absent: it is deleted as a side effect and a miss is
// reported. There is no background re-check; expiry is evaluated here,
// lazily.
func (m *Manager) GetRaw(key string, tier Tier) (json.RawMessage, bool) {
	st := m.store(tier)
	sk := storeKey(key, tier)

	e, ok := st.Get(sk)
	if !ok {
		return nil, false
	}

	if e.Expired(m.now()) {
		if err := st.Delete(sk); err != nil {
			m.logger.Warn("unable to purge expired cache entry", "key", key, "tier", tier, "err", err)
		}
		return nil, false
	}

	return e.Value, true
}

// SetRaw writes an entry with creation time now. Storage failures are
// logged and swallowed: caching is a best-effort optimization and
// callers must work with every write silently dropped.
func (m *Manager) SetRaw(key string, value json.RawMessage, ttl time.Duration, tier Tier) {
	e := Entry{
		Value:     value,
		CreatedAt: m.now().UnixMilli(),
		TTLMs:     ttl.Milliseconds(),
	}

	if err := m.store(tier).Set(storeKey(key, tier), e); err != nil {
		m.logger.Warn("cache write failed", "key", key, "tier", tier, "err", err)
	}
}

// Remove deletes one entry from the selected tier.
func (m *Manager) Remove(key string, tier Tier) {
	if err := m.store(tier).Delete(storeKey(key, tier)); err != nil {
		m.logger.Warn("cache delete failed", "key", key, "tier", tier, "err", err)
	}
}

// Clear removes every entry this cache owns in the given tier. For the
// ephemeral tier that is all entries; the file-backed tiers only drop
// keys carrying the reserved prefix.
func (m *Manager) Clear(tier Tier) error {
	return m.store(tier).Clear()
}

// Invalidate deletes, in every tier, every entry whose key contains any
// of the given patterns as a substring. Used after writes to drop
// now-stale cached reads without knowing exact keys.
func (m *Manager) Invalidate(patterns ...string) {
	for _, tier := range Tiers() {
		st := m.store(tier)
		for _, key := range st.Keys() {
			for _, pattern := range patterns {
				if !strings.Contains(key, pattern) {
					continue
				}
				if err := st.Delete(key); err != nil {
					m.logger.Warn("cache invalidation delete failed", "key", key, "tier", tier, "err", err)
				}
				break
			}
		}
	}
}

// Stats returns counters for every tier.
func (m *Manager) Stats() map[Tier]Stats {
	stats := make(map[Tier]Stats, 3)
	for _, tier := range Tiers() {
		stats[tier] = m.store(tier).Stats()
	}
	return stats
}

// Close stops the sweep and ends the session: the session tier's
// directory is removed. The ephemeral and persistent tiers are left as
// they are.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.closed = true
	m.mu.Unlock()

	if m.sweepTicker != nil {
		close(m.sweepStop)
		m.sweepWg.Wait()
		m.sweepTicker.Stop()
	}

	if err := os.RemoveAll(m.sessionDir); err != nil {
		return err
	}
	return nil
}

// startSweep launches the periodic expired-entry sweep for the
// ephemeral tier.
func (m *Manager) startSweep(interval time.Duration) {
	m.sweepTicker = time.NewTicker(interval)
	m.sweepWg.Add(1)

	go func() {
		defer m.sweepWg.Done()

		for {
			select {
			case <-m.sweepTicker.C:
				removed := m.ephemeral.RemoveExpired(m.now().UnixMilli())
				if removed > 0 {
					m.logger.Debug("swept expired ephemeral entries", "removed", removed)
				}
			case <-m.sweepStop:
				return
			}
		}
	}()
}

// Get looks up key in the selected tier and unmarshals the entry into
// T. A value that no longer unmarshals (corrupted or foreign data under
// the same key) is deleted and treated as a miss.
func Get[T any](m *Manager, key string, tier Tier) (T, bool) {
	var v T

	raw, ok := m.GetRaw(key, tier)
	if !ok {
		return v, false
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		m.logger.Warn("corrupt cache entry treated as miss", "key", key, "tier", tier, "err", err)
		m.Remove(key, tier)
		var zero T
		return zero, false
	}

	return v, true
}

// Set serializes value and writes it with the given TTL. Serialization
// and storage failures are swallowed like any other cache write
// failure.
func Set[T any](m *Manager, key string, value T, ttl time.Duration, tier Tier) {
	raw, err := json.Marshal(value)
	if err != nil {
		m.logger.Warn("cache value not serializable", "key", key, "err", err)
		return
	}
	m.SetRaw(key, raw, ttl, tier)
}

// WithCache is the read-through helper: a cached value is returned
// without invoking fetch; on a miss, fetch runs and its result is
// cached before being returned. A fetch failure propagates to the
// caller unchanged and nothing is cached — caching never masks a real
// data-fetch error, and failures are never negatively cached.
//
// Concurrent misses for the same key each invoke fetch; in-flight calls
// are not deduplicated.
func WithCache[T any](ctx context.Context, m *Manager, key string, ttl time.Duration, tier Tier, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := Get[T](m, key, tier); ok {
		return v, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	Set(m, key, v, ttl, tier)
	return v, nil
}
