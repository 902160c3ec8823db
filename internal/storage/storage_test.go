package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestGenerateName(t *testing.T) {
	store := newTestStore(t)

	name := store.GenerateName("trailer.mp4")
	if !strings.HasSuffix(name, ".mp4") {
		t.Errorf("Expected .mp4 suffix, got %s", name)
	}

	other := store.GenerateName("trailer.mp4")
	if name == other {
		t.Error("Expected generated names to be unique")
	}
}

func TestURLRoundTrip(t *testing.T) {
	store := newTestStore(t)

	name := store.GenerateName("poster.png")
	url := store.URL(name)

	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("Expected /uploads/ prefix, got %s", url)
	}

	if store.DiskPathForURL(url) != store.DiskPath(name) {
		t.Errorf("Expected URL %s to resolve back to %s", url, store.DiskPath(name))
	}
}

func TestDiskPathForURLIgnoresDirectories(t *testing.T) {
	store := newTestStore(t)

	// A hostile reference must not escape the storage dir
	resolved := store.DiskPathForURL("/uploads/../../etc/passwd")
	if filepath.Dir(resolved) != store.Dir() {
		t.Errorf("Expected resolution inside %s, got %s", store.Dir(), resolved)
	}
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	name := store.GenerateName("clip.mp4")
	diskPath := store.DiskPath(name)
	if err := os.WriteFile(diskPath, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	url := store.URL(name)
	if !store.Exists(url) {
		t.Fatal("Expected file to exist before removal")
	}

	if err := store.Remove(url); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if store.Exists(url) {
		t.Error("Expected file to be gone after removal")
	}

	// Removing a missing file is not an error
	if err := store.Remove(url); err != nil {
		t.Errorf("Expected nil error for missing file, got %v", err)
	}
}
