package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileStore reads and writes the ledger document at a fixed path.
// Saves are write-then-rename so a crash never leaves a half-written
// file behind.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore constructs a store for the given path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "persist").Logger(),
	}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted document. A missing file is an empty
// document, and decode damage is recovered per source/period.
func (s *FileStore) Load() (Document, error) {
	blob, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{Extremes: map[string]SourceLedgers{}}, nil
		}
		return Document{}, fmt.Errorf("read persisted state: %w", err)
	}
	return Decode(blob, s.logger), nil
}

// Save atomically replaces the persisted document. The caller's
// in-memory state is unaffected by a failure; the next scheduled save
// retries.
func (s *FileStore) Save(doc Document) error {
	blob, err := Encode(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
