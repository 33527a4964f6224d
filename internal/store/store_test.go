package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestPut(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("market_1.json", []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	data, err := s.Read("market_1.json")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(data) != `{"id":"1"}` {
		t.Errorf("Read() = %q, want %q", data, `{"id":"1"}`)
	}
}

func TestPut_NoTempLeftovers(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.Put("event_9.json", []byte("content")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
}

func TestPut_Overwrite(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("a.json", []byte("old")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put("a.json", []byte("new")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	data, _ := s.Read("a.json")
	if string(data) != "new" {
		t.Errorf("Read() after overwrite = %q, want %q", data, "new")
	}
}

func TestExistsNonEmpty(t *testing.T) {
	s := newTestStore(t)

	if s.ExistsNonEmpty("missing.json") {
		t.Error("ExistsNonEmpty() = true for missing file")
	}

	// A zero-byte file counts as absent so interrupted downloads are
	// retried rather than skipped forever.
	if err := os.WriteFile(filepath.Join(s.Dir(), "empty.json"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if s.ExistsNonEmpty("empty.json") {
		t.Error("ExistsNonEmpty() = true for zero-byte file")
	}

	if err := s.Put("full.json", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if !s.ExistsNonEmpty("full.json") {
		t.Error("ExistsNonEmpty() = false for non-empty file")
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	if _, err := New(dir, nil); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("directory was not created: %v", err)
	}
}
