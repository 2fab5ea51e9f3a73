package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Manager performs housekeeping in the processed directory
type Manager struct {
	dir    string
	logger *slog.Logger
}

// NewManager creates a manager for dir
func NewManager(dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{dir: dir, logger: logger.With("component", "file_manager")}
}

// isTempArtifact matches the hidden temporary files written before publication
func isTempArtifact(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}

// RemoveStaleTemps deletes temporary artifacts older than maxAge, left
// behind by runs that died before publishing. It returns the removed paths.
func (m *Manager) RemoveStaleTemps(maxAge time.Duration) ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", m.dir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() || !isTempArtifact(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		m.logger.Info("Removed stale temporary artifact", slog.String("path", path))
		removed = append(removed, path)
	}
	return removed, nil
}
