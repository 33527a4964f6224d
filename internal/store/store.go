package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store persists entity files under a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put writes content to name atomically: the bytes go to a temporary
// file in the same directory, which is then renamed into place. On any
// failure the temporary file is removed, so a partially written file is
// never visible under the final name.
func (s *Store) Put(name string, content []byte) error {
	final := filepath.Join(s.dir, name)
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		s.cleanupTemp(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		s.cleanupTemp(tmp)
		return fmt.Errorf("rename %s to %s: %w", tmp, final, err)
	}
	return nil
}

// ExistsNonEmpty reports whether name exists with size > 0. Zero-length
// files are treated as absent so an interrupted download is retried on
// the next run rather than skipped forever.
func (s *Store) ExistsNonEmpty(name string) bool {
	info, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// Read returns the full content of name.
func (s *Store) Read(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, name))
}

func (s *Store) cleanupTemp(tmp string) {
	if _, err := os.Stat(tmp); err != nil {
		return
	}
	if err := os.Remove(tmp); err != nil {
		s.logger.Warn("could not remove temporary file", "path", tmp, "err", err)
	}
}
