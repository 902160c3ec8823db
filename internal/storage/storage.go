package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Store provides local file storage for uploaded and encoded assets.
// Files live in a single flat directory and are referenced by
// web-relative URLs (e.g. /uploads/1700000000000000000.mp4).
type Store struct {
	dir       string
	urlPrefix string
}

// New creates a store rooted at dir, creating it if needed
func New(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	return &Store{
		dir:       dir,
		urlPrefix: urlPrefix,
	}, nil
}

// Dir returns the storage directory, for static file serving
func (s *Store) Dir() string {
	return s.dir
}

// GenerateName produces a unique stored name for an uploaded file,
// keeping the original extension. Nanosecond timestamps keep concurrent
// uploads from colliding.
func (s *Store) GenerateName(originalName string) string {
	return fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(originalName))
}

// DiskPath returns the filesystem path for a stored name
func (s *Store) DiskPath(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// URL returns the web-relative reference for a stored name
func (s *Store) URL(name string) string {
	return s.urlPrefix + "/" + filepath.Base(name)
}

// DiskPathForURL resolves a web-relative reference back to a filesystem
// path. Only the basename is honored, so references cannot escape the
// storage directory.
func (s *Store) DiskPathForURL(url string) string {
	return filepath.Join(s.dir, path.Base(url))
}

// Exists reports whether the file behind a web-relative reference is on disk
func (s *Store) Exists(url string) bool {
	_, err := os.Stat(s.DiskPathForURL(url))
	return err == nil
}

// Remove deletes the file behind a web-relative reference if it exists.
// A missing file is not an error.
func (s *Store) Remove(url string) error {
	diskPath := s.DiskPathForURL(url)

	if _, err := os.Stat(diskPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if err := os.Remove(diskPath); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}
