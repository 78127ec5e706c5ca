package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreSetGetRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")
	store := NewFileStore(dir)

	if _, err := store.Get("observation-counter-sessions"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store err = %v want ErrNotFound", err)
	}
	if err := store.Set("observation-counter-sessions", `[{"id":"a"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := store.Get("observation-counter-sessions")
	if err != nil || value != `[{"id":"a"}]` {
		t.Fatalf("Get = %q, %v", value, err)
	}

	if err := store.Remove("observation-counter-sessions"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove("observation-counter-sessions"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if _, err := store.Get("observation-counter-sessions"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Remove err = %v want ErrNotFound", err)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	for i := 0; i < 3; i++ {
		if err := store.Set("counters", "[]"); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "counters.json" {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("directory entries = %v want [counters.json]", names)
	}
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := store.Set("../escape/key", "x"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".._escape_key.json")); err != nil {
		t.Fatalf("sanitized file missing: %v", err)
	}
}

func TestProbeReportsWriteFailure(t *testing.T) {
	store := NewMemoryStore()
	if err := Probe(store); err != nil {
		t.Fatalf("Probe on healthy store: %v", err)
	}
	if _, err := store.Get(probeKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("probe key left behind: %v", err)
	}

	store.FailWrites(errors.New("denied"))
	if err := Probe(store); err == nil {
		t.Fatalf("Probe succeeded on failing store")
	}
	if err := Probe(nil); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Probe(nil) err = %v want ErrUnavailable", err)
	}
}
