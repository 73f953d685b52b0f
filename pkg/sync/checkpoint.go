package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CheckpointStore persists the last successfully synchronized date.
type CheckpointStore interface {
	// Read returns the checkpoint date, or ok=false when none exists yet.
	Read() (date time.Time, ok bool, err error)
	// Write replaces the checkpoint. Must be atomic with respect to crashes.
	Write(date time.Time) error
}

// FileCheckpointStore keeps the checkpoint as a single plain-text date in a
// file. Writes go to a temp file in the same directory and are renamed into
// place, so a crash mid-write never corrupts the previous value.
type FileCheckpointStore struct {
	path string
}

// NewFileCheckpointStore creates a checkpoint store backed by the given path.
func NewFileCheckpointStore(path string) *FileCheckpointStore {
	return &FileCheckpointStore{path: path}
}

func (s *FileCheckpointStore) Read() (time.Time, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read checkpoint %s: %w", s.path, err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return time.Time{}, false, nil
	}

	date, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse checkpoint %s: %w", s.path, err)
	}
	return date, true, nil
}

func (s *FileCheckpointStore) Write(date time.Time) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.WriteString(date.Format(dateLayout))
	if werr == nil {
		werr = tmp.Sync()
	}
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmpName)
		if werr != nil {
			return fmt.Errorf("write checkpoint temp file: %w", werr)
		}
		return fmt.Errorf("close checkpoint temp file: %w", cerr)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit checkpoint %s: %w", s.path, err)
	}
	return nil
}
