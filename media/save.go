package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Artifact filename prefixes by kind.
const (
	imagePrefix = "img"
	videoPrefix = "vid"
)

// ErrOutputDirMissing indicates the output directory does not exist.
var ErrOutputDirMissing = errors.New("media: output directory does not exist")

// SaveArtifact validates and writes one PNG artifact to the output
// directory under a collision-free name. Returns the full path written.
func SaveArtifact(dir string, data []byte) (string, error) {
	if err := ValidatePNG(data); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media: creating output directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.png", imagePrefix, uuid.NewString())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("media: writing artifact: %w", err)
	}
	return path, nil
}

// Artifact describes one saved output file.
type Artifact struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`

	// Kind is "image" or "video", derived from the file extension.
	Kind string `json:"kind"`
}

// artifactKind classifies an output filename. Unknown extensions return "".
func artifactKind(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return "image"
	case ".avi":
		return "video"
	default:
		return ""
	}
}

// ListArtifacts returns the saved artifacts in the output directory, newest
// first. Files with unrecognized extensions are skipped.
func ListArtifacts(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrOutputDirMissing, dir)
		}
		return nil, fmt.Errorf("media: reading output directory: %w", err)
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		kind := artifactKind(entry.Name())
		if kind == "" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Kind:    kind,
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].ModTime.After(artifacts[j].ModTime)
	})
	return artifacts, nil
}

// ClearArtifacts removes every recognized artifact from the output directory
// and returns the number of files removed. Unrecognized files are left alone.
func ClearArtifacts(dir string) (int, error) {
	artifacts, err := ListArtifacts(dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, a := range artifacts {
		if err := os.Remove(a.Path); err != nil {
			return removed, fmt.Errorf("media: removing %s: %w", a.Name, err)
		}
		removed++
	}
	return removed, nil
}
