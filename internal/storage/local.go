package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// defaultUploadDir is used when no directory is configured.
const defaultUploadDir = "uploads"

// LocalStorage keeps files in a single directory on disk.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = defaultUploadDir
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStorage) Dir() string {
	return s.basePath
}

// Save writes r to <basePath>/<name>. A partially written file is removed.
func (s *LocalStorage) Save(_ context.Context, name string, r io.Reader) error {
	name, err := CleanName(name)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.basePath, name)
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(fullPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	return nil
}

// Open returns a reader for <basePath>/<name>.
func (s *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	name, err := CleanName(name)
	if err != nil {
		return nil, ErrFileNotFound
	}

	f, err := os.Open(filepath.Join(s.basePath, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Remove deletes <basePath>/<name>. A missing file is not an error.
func (s *LocalStorage) Remove(_ context.Context, name string) error {
	name, err := CleanName(name)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.basePath, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
