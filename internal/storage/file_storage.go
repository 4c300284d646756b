package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const stagingSuffix = ".part"

// FileStorage manages artifact files below a destination root.
type FileStorage struct {
	dir string
}

// NewFileStorage creates a new FileStorage instance rooted at dir.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: filepath.Clean(dir)}
}

func (s *FileStorage) resolve(path string) (string, error) {
	clean := filepath.Clean(path)
	rel, err := filepath.Rel(s.dir, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes storage root %s", path, s.dir)
	}
	return clean, nil
}

// EnsureDir creates dir and its parents if needed.
func (s *FileStorage) EnsureDir(dir string) error {
	p, err := s.resolve(dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, 0o755)
}

// FileExists checks whether a regular file exists at path.
func (s *FileStorage) FileExists(path string) bool {
	p, err := s.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// GetFileSize returns the size of the file in bytes.
func (s *FileStorage) GetFileSize(path string) (int64, error) {
	p, err := s.resolve(path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// StagingPath returns where dest is written while the transfer is running.
func StagingPath(dest string) string {
	return dest + stagingSuffix
}

// CreateStaging truncates or creates the staging file for dest.
func (s *FileStorage) CreateStaging(dest string) (*os.File, error) {
	p, err := s.resolve(dest)
	if err != nil {
		return nil, err
	}
	return os.Create(StagingPath(p))
}

// Promote atomically moves the staging file of dest onto dest.
func (s *FileStorage) Promote(dest string) error {
	p, err := s.resolve(dest)
	if err != nil {
		return err
	}
	if err := os.Rename(StagingPath(p), p); err != nil {
		return fmt.Errorf("rename staging file: %w", err)
	}
	return nil
}

// Discard removes the staging file of dest, if any.
func (s *FileStorage) Discard(dest string) error {
	p, err := s.resolve(dest)
	if err != nil {
		return err
	}
	if err := os.Remove(StagingPath(p)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
