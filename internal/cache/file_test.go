package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	key := KeyPrefix + "today_quote_2024-01-15"
	e := entryAt(`{"text":"keep going"}`, 1000, 5000)

	if err := store.Set(key, e); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := store.Get(key)
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if string(got.Value) != `{"text":"keep going"}` || got.CreatedAt != 1000 {
		t.Errorf("entry mismatch: %+v", got)
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	key := KeyPrefix + "quote_count"
	if err := store.Set(key, entryAt(`42`, 0, 60000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, ok := reopened.Get(key)
	if !ok {
		t.Fatal("entry did not survive reopen")
	}
	if string(got.Value) != `42` {
		t.Errorf("entry value mismatch after reopen: %s", got.Value)
	}
}

func TestFileStore_CompressesLargeEntries(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	big, _ := json.Marshal(strings.Repeat("compress me ", 500))
	key := KeyPrefix + "archive_p1_l100"
	if err := store.Set(key, Entry{Value: big, CreatedAt: 0, TTLMs: 60000}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(store.entryPath(key))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() >= int64(len(big)) {
		t.Errorf("expected compressed file smaller than %d bytes, got %d", len(big), info.Size())
	}

	got, ok := store.Get(key)
	if !ok {
		t.Fatal("Get failed after compressed write")
	}
	if string(got.Value) != string(big) {
		t.Error("compressed round trip mismatch")
	}
}

func TestFileStore_CorruptEntrySelfHeals(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	key := KeyPrefix + "today_quote_2024-01-15"
	if err := store.Set(key, entryAt(`"fine"`, 0, 60000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Scribble over the entry file.
	path := store.entryPath(key)
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatalf("corrupting entry failed: %v", err)
	}

	if _, ok := store.Get(key); ok {
		t.Fatal("corrupt entry should read as a miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry file should have been removed")
	}
}

func TestFileStore_ClearLeavesForeignData(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	// Two owned entries and one unprefixed key sharing the namespace.
	store.Set(KeyPrefix+"today_quote_2024-01-15", entryAt(`1`, 0, 1000))
	store.Set(KeyPrefix+"quote_count", entryAt(`2`, 0, 1000))
	store.Set("someone-elses-key", entryAt(`3`, 0, 1000))

	// Plus a file that is not an entry at all.
	foreign := filepath.Join(dir, "README.txt")
	if err := os.WriteFile(foreign, []byte("hands off"), 0o644); err != nil {
		t.Fatalf("writing foreign file failed: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if len(store.Keys()) != 0 {
		t.Errorf("expected no owned keys after clear, got %v", store.Keys())
	}
	if _, ok := store.Get("someone-elses-key"); !ok {
		t.Error("unprefixed key should survive clear")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Errorf("foreign file should survive clear: %v", err)
	}
}

func TestFileStore_KeysDecodesOwnedKeysOnly(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	store.Set(KeyPrefix+"archive_p2_l12_cat-motivation", entryAt(`[]`, 0, 1000))
	store.Set("unowned", entryAt(`0`, 0, 1000))

	keys := store.Keys()
	if len(keys) != 1 || keys[0] != KeyPrefix+"archive_p2_l12_cat-motivation" {
		t.Errorf("unexpected keys: %v", keys)
	}
}

func TestFileStore_DeleteMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Delete(KeyPrefix + "never-set"); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}
