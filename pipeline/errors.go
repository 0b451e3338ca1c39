package pipeline

import "errors"

// Sentinel errors for pipeline operations.
var (
	// ErrPipelineLoad indicates model construction failed. Fatal, surfaced
	// to the caller; the request is aborted.
	ErrPipelineLoad = errors.New("pipeline: failed to load pipeline")

	// ErrGeneration indicates the delegated generation call failed. Fatal,
	// surfaced; the cached pipeline handle is left untouched.
	ErrGeneration = errors.New("pipeline: generation failed")

	// ErrUnknownModality indicates a modality outside the supported set.
	ErrUnknownModality = errors.New("pipeline: unknown modality")

	// ErrInvalidParams indicates request validation failed before any
	// backend call was made.
	ErrInvalidParams = errors.New("pipeline: invalid generation request")

	// ErrManagerClosed indicates the manager has been cleaned up and the
	// process is shutting down.
	ErrManagerClosed = errors.New("pipeline: manager is closed")
)
