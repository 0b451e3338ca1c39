// Package pipeline wraps an external diffusion backend behind a per-modality
// pipeline cache.
//
// The Manager owns at most one loaded pipeline handle per modality
// (text-to-image, image-to-image, text-to-video). A handle moves one way,
// Unloaded -> Loaded, and is reused for every subsequent request of its
// modality until Cleanup returns all modalities to Unloaded and releases the
// underlying accelerator memory.
//
// Actual inference is entirely delegated: the Backend interface is the seam
// to the external library (the local stable-diffusion.cpp bindings in the
// diffusion package, or a remote provider). This package decides which model
// to load, at which precision, with which memory optimizations, and with
// which merged generation parameters.
//
// # Quick Start
//
//	caps := device.DetectHost(false, logger)
//	mgr := pipeline.NewManager(backend, caps, pipeline.WithLogger(logger))
//	defer mgr.Cleanup()
//
//	res, err := mgr.Generate(ctx, pipeline.TextToImage, pipeline.Request{
//	    Prompt: "a sunset over mountains",
//	    Seed:   -1,
//	})
//
// # Error Handling
//
// The package defines sentinel errors checked with errors.Is:
//
//   - ErrPipelineLoad: model construction failed (fatal, surfaced)
//   - ErrGeneration: the delegated generation call failed (fatal, surfaced;
//     the loaded pipeline stays cached)
//   - ErrUnknownModality: modality outside the supported set
//   - ErrInvalidParams: request validation failed
//
// Memory optimization failures are never surfaced: the Manager walks an
// ordered preference list (efficient attention, then attention slicing on
// CUDA; slicing outright elsewhere), applies the first that succeeds, and
// logs the rest at warning level.
//
// # Thread Safety
//
// The handle cache is guarded by a mutex, so concurrent EnsureLoaded calls
// never construct the same modality twice. The generation calls themselves
// are not serialized: concurrent Generate calls for one modality race on the
// underlying accelerator context. Callers that need isolation must serialize
// at a higher level.
package pipeline
