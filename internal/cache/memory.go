package cache

import "sync"

// MemoryStore is the ephemeral tier: a mutex-guarded map that lives for
// the lifetime of the process. It owns its whole namespace, so Clear
// removes everything.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Entry

	hits   int64
	misses int64
}

// NewMemoryStore creates an empty ephemeral store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Entry),
	}
}

// Get retrieves an entry from the store.
func (s *MemoryStore) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok {
		s.misses++
		return Entry{}, false
	}

	s.hits++
	return e, true
}

// Set stores an entry, replacing any previous entry for the key.
func (s *MemoryStore) Set(key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = e
	return nil
}

// Delete removes an entry from the store.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

// Clear removes all entries from the store.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]Entry)
	return nil
}

// Keys returns all keys in the store.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	return keys
}

// Stats returns store counters.
func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var size int64
	for _, e := range s.items {
		size += int64(len(e.Value))
	}

	return Stats{
		Items:     int64(len(s.items)),
		SizeBytes: size,
		Hits:      s.hits,
		Misses:    s.misses,
	}
}

// RemoveExpired deletes every entry whose TTL has elapsed at nowMs and
// returns how many were removed. Used by the manager's periodic sweep
// to bound growth under continuous unique-key writes; lazy expiry on
// read remains the primary mechanism.
func (s *MemoryStore) RemoveExpired(nowMs int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.items {
		if nowMs > e.CreatedAt+e.TTLMs {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}
