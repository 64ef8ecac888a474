package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores each key as a YAML file in a directory.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("could not create session directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return filepath.Join(b.dir, name+".yaml")
}

func (b *FileBackend) Load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not read session file: %w", err)
	}
	return data, nil
}

// Save writes to a temporary file and renames it into place.
func (b *FileBackend) Save(_ context.Context, name string, value []byte) error {
	tmp, err := os.CreateTemp(b.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("could not create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path(name)); err != nil {
		return fmt.Errorf("could not replace session file: %w", err)
	}
	return nil
}

func (b *FileBackend) Delete(_ context.Context, name string) error {
	err := os.Remove(b.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not remove session file: %w", err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
