package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Built-in default model identifiers per modality.
const (
	DefaultTextToImageModel  = "runwayml/stable-diffusion-v1-5"
	DefaultImageToImageModel = "runwayml/stable-diffusion-v1-5"
	DefaultTextToVideoModel  = "damo-vilab/text-to-video-ms-1.7b"
)

// ModelEntry describes the models configured for one modality.
type ModelEntry struct {
	Default      string   `yaml:"default"`
	Alternatives []string `yaml:"alternatives,omitempty"`
}

// Registry maps modalities to model entries. A Registry is read-only after
// construction.
type Registry struct {
	entries map[Modality]ModelEntry
}

// DefaultRegistry returns the built-in model registry.
func DefaultRegistry() *Registry {
	return &Registry{entries: map[Modality]ModelEntry{
		TextToImage: {
			Default: DefaultTextToImageModel,
			Alternatives: []string{
				"stabilityai/stable-diffusion-2-1",
				"stabilityai/stable-diffusion-xl-base-1.0",
			},
		},
		ImageToImage: {Default: DefaultImageToImageModel},
		TextToVideo:  {Default: DefaultTextToVideoModel},
	}}
}

// LoadRegistryFile reads a YAML registry file and overlays it on the
// built-in defaults. Modalities absent from the file keep their built-in
// entries. File format:
//
//	text-to-image:
//	  default: stabilityai/stable-diffusion-2-1
//	  alternatives:
//	    - runwayml/stable-diffusion-v1-5
//	text-to-video:
//	  default: damo-vilab/text-to-video-ms-1.7b
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model registry: %w", err)
	}

	var raw map[string]ModelEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing model registry: %w", err)
	}

	reg := DefaultRegistry()
	for name, entry := range raw {
		modality, err := ParseModality(name)
		if err != nil {
			return nil, fmt.Errorf("model registry: %w", err)
		}
		if entry.Default == "" {
			return nil, fmt.Errorf("model registry: %s has no default model", name)
		}
		reg.entries[modality] = entry
	}

	return reg, nil
}

// Resolve returns the model ID to load for a modality: the override when
// given, the registry default otherwise.
func (r *Registry) Resolve(m Modality, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	entry, ok := r.entries[m]
	if !ok || entry.Default == "" {
		return "", fmt.Errorf("%w: no model configured for %s", ErrUnknownModality, m)
	}
	return entry.Default, nil
}

// Alternatives returns the configured alternative models for a modality.
func (r *Registry) Alternatives(m Modality) []string {
	return r.entries[m].Alternatives
}
