package cache

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const (
	// fileExt marks entry files in the store directory. Files with any
	// other extension belong to someone else and are never touched.
	fileExt = ".cache"

	// compressThreshold is the serialized size above which entries are
	// zstd-compressed on disk.
	compressThreshold = 1024
)

// zstdMagic is the zstd frame header; its presence tells a reader the
// entry file is compressed.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// FileStore is a file-backed key-value store used for both the
// persistent and the session tiers. Each entry is one file, named after
// the encoded key; writes go through a temp file and an atomic rename.
// The directory is a shared namespace: Clear and Keys only consider
// entries carrying KeyPrefix, leaving unrelated files alone.
type FileStore struct {
	dir string

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu sync.Mutex

	hits   int64
	misses int64
}

// NewFileStore creates a file store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create cache directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("unable to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create zstd decoder: %w", err)
	}

	return &FileStore{
		dir:     dir,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

// Get retrieves an entry from disk. Unreadable or corrupted entry files
// are self-healing: they are removed and reported as misses, never as
// failures.
func (s *FileStore) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		s.misses++
		return Entry{}, false
	}

	if bytes.HasPrefix(data, zstdMagic) {
		decompressed, err := s.decoder.DecodeAll(data, nil)
		if err != nil {
			os.Remove(path)
			s.misses++
			return Entry{}, false
		}
		data = decompressed
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		os.Remove(path)
		s.misses++
		return Entry{}, false
	}

	s.hits++
	return e, true
}

// Set serializes an entry and writes it to disk.
func (s *FileStore) Set(key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("unable to serialize cache entry: %w", err)
	}

	if len(data) > compressThreshold {
		compressed := s.encoder.EncodeAll(data, nil)
		if len(compressed) < len(data) {
			data = compressed
		}
	}

	if err := s.writeFile(s.entryPath(key), data); err != nil {
		return fmt.Errorf("unable to write cache entry: %w", err)
	}
	return nil
}

// Delete removes an entry file. A missing file is not an error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.entryPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to delete cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry this cache owns: only files whose decoded
// key carries KeyPrefix. Unrelated data sharing the directory stays
// untouched.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, key := range s.ownedKeys() {
		if err := os.Remove(s.entryPath(key)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Keys returns the keys of all entries this cache owns.
func (s *FileStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ownedKeys()
}

// Stats returns store counters. SizeBytes is the on-disk size of owned
// entries.
func (s *FileStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Hits: s.hits, Misses: s.misses}
	for _, key := range s.ownedKeys() {
		info, err := os.Stat(s.entryPath(key))
		if err != nil {
			continue
		}
		stats.Items++
		stats.SizeBytes += info.Size()
	}
	return stats
}

// entryPath maps a key to its file path. The key is base64-encoded so
// arbitrary key strings stay filesystem-safe and reversible.
func (s *FileStore) entryPath(key string) string {
	name := base64.URLEncoding.EncodeToString([]byte(key)) + fileExt
	return filepath.Join(s.dir, name)
}

// ownedKeys scans the directory and decodes the keys of entry files
// carrying KeyPrefix (lock must be held).
func (s *FileStore) ownedKeys() []string {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var keys []string
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		raw, err := base64.URLEncoding.DecodeString(strings.TrimSuffix(name, fileExt))
		if err != nil {
			// Foreign file that happens to share the extension.
			continue
		}
		key := string(raw)
		if !strings.HasPrefix(key, KeyPrefix) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// writeFile writes data through a temp file and an atomic rename so a
// crashed write never leaves a truncated entry behind.
func (s *FileStore) writeFile(path string, data []byte) error {
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}

	return os.Rename(tempPath, path)
}
