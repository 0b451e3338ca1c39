package diffusion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// modelFileExt is the weight file format the C library loads.
const modelFileExt = ".safetensors"

// ModelFileName converts a model identifier to its cache filename. Path
// separators in the identifier become "--" so hub-style identifiers like
// "runwayml/stable-diffusion-v1-5" stay a single filename. A non-empty
// variant is appended as a suffix.
//
// This is a pure function with no side effects.
func ModelFileName(modelID, variant string) string {
	name := strings.ReplaceAll(modelID, "/", "--")
	name = strings.ReplaceAll(name, string(os.PathSeparator), "--")
	if variant != "" {
		name += "-" + variant
	}
	return name + modelFileExt
}

// FindModelFile locates the weight file for a model identifier under the
// cache directory. When a variant is requested, the variant file is
// preferred and the base file is the fallback.
//
// Returns ErrModelNotFound when no candidate exists.
func FindModelFile(cacheDir, modelID, variant string) (string, error) {
	candidates := make([]string, 0, 2)
	if variant != "" {
		candidates = append(candidates, ModelFileName(modelID, variant))
	}
	candidates = append(candidates, ModelFileName(modelID, ""))

	for _, name := range candidates {
		path := filepath.Join(cacheDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s (looked for %s in %s)",
		ErrModelNotFound, modelID, strings.Join(candidates, ", "), cacheDir)
}
