package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore persists coursework files on disk under a base directory.
// The relative path doubles as the stored file's public id.
type LocalStore struct {
	baseDir string
}

// NewLocalStore ensures the base directory exists and returns a handle.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// SaveStream copies from reader into the target file path and returns the
// relative path used as public id.
func (s *LocalStore) SaveStream(filename string, r io.Reader) (string, error) {
	path := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return filename, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStore) Open(publicID string) (*os.File, error) {
	file, err := os.Open(s.resolve(publicID))
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStore) Delete(publicID string) error {
	if err := os.Remove(s.resolve(publicID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

func (s *LocalStore) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.baseDir, filename)
}
