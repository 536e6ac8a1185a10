package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists one component's configuration as canonical text. Writes
// replace the whole configuration; there are no partial updates.
type Store interface {
	// Store atomically overwrites the configuration.
	Store(text string) error

	// Load returns the configuration, or ok=false when none has been stored.
	Load() (text string, ok bool, err error)

	// Delete removes the configuration. Deleting a missing configuration is
	// not an error.
	Delete() error
}

// FileStore keeps a configuration in a single file under a caller chosen
// directory. Writes go through a temporary file in the same directory and a
// rename, so readers never observe a partially written configuration.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the named configuration file, creating
// the directory if needed.
func NewFileStore(directory, filename string) (*FileStore, error) {
	if err := os.MkdirAll(directory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create configuration directory: %w", err)
	}
	return &FileStore{path: filepath.Join(directory, filename)}, nil
}

func (s *FileStore) Store(text string) error {
	directory := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(directory, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary configuration file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to close configuration file: %w", err)
	}
	if err := os.Chmod(name, 0600); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to set configuration permissions: %w", err)
	}
	if err := os.Rename(name, s.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to replace configuration: %w", err)
	}
	return nil
}

func (s *FileStore) Load() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read configuration: %w", err)
	}
	return string(data), true, nil
}

func (s *FileStore) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	return nil
}
