package pipeline

import (
	"context"

	"aigen/device"
)

// LoadSpec tells a Backend which pipeline to construct and how.
type LoadSpec struct {
	Modality    Modality
	ModelID     string
	Accelerator device.Accelerator
	Precision   device.Precision

	// Variant selects a weight variant; "fp16" on CUDA, empty otherwise.
	Variant string
}

// GenerateSpec is a fully resolved generation call: defaults already merged,
// seed already chosen.
type GenerateSpec struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	GuidanceScale  float64

	// ImageCount applies to image modalities.
	ImageCount int

	// FrameCount applies to video.
	FrameCount int

	// InitImage and Strength apply to image-to-image.
	InitImage []byte
	Strength  float64

	Seed int64
}

// MemoryOptimization identifies a memory/throughput trade the backend can
// apply to a loaded pipeline.
type MemoryOptimization int

const (
	// OptEfficientAttention is the advanced memory-efficient attention
	// implementation, available on CUDA builds that ship it.
	OptEfficientAttention MemoryOptimization = iota
	// OptAttentionSlicing processes attention in chunks, trading throughput
	// for lower peak memory. Always available.
	OptAttentionSlicing
)

// String returns the optimization name used in logs.
func (o MemoryOptimization) String() string {
	if o == OptEfficientAttention {
		return "efficient-attention"
	}
	return "attention-slicing"
}

// Handle is a loaded pipeline owned by the Manager's cache.
type Handle interface {
	// Generate runs one delegated inference call and returns the encoded
	// artifacts.
	Generate(ctx context.Context, spec GenerateSpec) (*Result, error)

	// ApplyMemoryOptimization enables one optimization on the loaded
	// pipeline. An unavailable optimization returns an error; the caller
	// decides the fallback.
	ApplyMemoryOptimization(opt MemoryOptimization) error

	// Close releases the pipeline's resources.
	Close() error
}

// Backend abstracts the external diffusion library. Implementations:
// diffusion.Backend (local stable-diffusion.cpp bindings) and
// imagegen.Backend (remote OpenAI provider).
type Backend interface {
	// Load constructs a pipeline for the given spec.
	Load(ctx context.Context, spec LoadSpec) (Handle, error)

	// ReclaimMemory triggers accelerator cache release after handles are
	// closed: CUDA cache clear, Metal cache clear, or a no-op for CPU.
	ReclaimMemory(accel device.Accelerator)
}
