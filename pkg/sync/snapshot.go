package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// SnapshotWriter persists raw and flattened row sets as JSON array files.
// Snapshots are written regardless of upload outcome so a failed run's fetch
// work can be audited and replayed.
type SnapshotWriter struct {
	dir    string
	logger *zap.Logger
}

// NewSnapshotWriter creates a writer rooted at dir.
func NewSnapshotWriter(dir string, logger *zap.Logger) *SnapshotWriter {
	return &SnapshotWriter{dir: dir, logger: logger}
}

// WriteJSON writes v as indented JSON under the snapshot directory and
// returns the full path.
func (w *SnapshotWriter) WriteJSON(name string, v interface{}) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir %s: %w", w.dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}

	w.logger.Info("Snapshot written", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

// TimestampSuffix names dry-run snapshot files so they never clobber the
// canonical ones.
func TimestampSuffix(t time.Time) string {
	return t.Format("20060102_150405")
}
