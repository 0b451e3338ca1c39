package diffusion

import "errors"

// Sentinel errors for the local diffusion backend.
var (
	// Model-related errors
	ErrModelNotFound   = errors.New("diffusion: model file not found")
	ErrModelLoadFailed = errors.New("diffusion: failed to load model")
	ErrModelCorrupted  = errors.New("diffusion: model file is corrupted or invalid")

	// Generation errors
	ErrGenerationFailed = errors.New("diffusion: generation failed")
	ErrOutOfMemory      = errors.New("diffusion: accelerator memory exhausted")

	// Optimization errors
	ErrOptimizationUnavailable = errors.New("diffusion: memory optimization not available in this build")

	// Handle lifecycle errors
	ErrPipelineClosed = errors.New("diffusion: pipeline has been closed")
)
