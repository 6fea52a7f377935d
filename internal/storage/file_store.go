package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
)

// FileStore keeps the whole ledger state in one JSON document
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the state file
func (s *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	state, err := DecodeState(data)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"path":    s.path,
		"blocks":  len(state.Chain),
		"pending": len(state.Pending),
	}).Debug("State file loaded")
	return state, nil
}

// Save replaces the state file. The document is written to a temporary file
// in the same directory and renamed over the old one.
func (s *FileStore) Save(state *State) error {
	data, err := EncodeState(state)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open between calls
func (s *FileStore) Close() error {
	return nil
}
