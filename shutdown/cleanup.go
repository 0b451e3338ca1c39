package shutdown

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// tempPrefixes name the partial-output files generation can leave behind
// when interrupted: half-written videos and in-progress downloads.
var tempPrefixes = []string{"tmp_", "partial_"}

// CleanupTempArtifacts removes leftover temporary files from the given
// directories. Interrupted runs can leave partial video containers or
// half-downloaded images behind; this sweeps them on shutdown (or startup).
// Missing directories are skipped. Returns the number of files removed.
func CleanupTempArtifacts(logger *zap.Logger, dirs ...string) int {
	if logger == nil {
		logger = zap.NewNop()
	}

	removed := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("cannot read directory for cleanup",
					zap.String("dir", dir), zap.Error(err))
			}
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !isTempArtifact(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logger.Warn("cannot remove temp artifact",
					zap.String("path", path), zap.Error(err))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		logger.Info("removed temp artifacts", zap.Int("count", removed))
	}
	return removed
}

func isTempArtifact(name string) bool {
	for _, prefix := range tempPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
