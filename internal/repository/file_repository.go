package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amirk1998/notes-vault/pkg/errors"
)

// FileRepository stores each named document as <dir>/<name>.json.
type FileRepository struct {
	dir string
}

// NewFileRepository creates the directory if needed
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) path(name string) string {
	return filepath.Join(r.dir, name+".json")
}

// Load returns the document stored under name
func (r *FileRepository) Load(_ context.Context, name string) ([]byte, error) {
	doc, err := os.ReadFile(r.path(name))
	if os.IsNotExist(err) {
		return nil, errors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return doc, nil
}

// Save writes doc to a temporary file and renames it over the old one, so a
// reader never sees a half-written document.
func (r *FileRepository) Save(_ context.Context, name string, doc []byte) error {
	tmp, err := os.CreateTemp(r.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, r.path(name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}
