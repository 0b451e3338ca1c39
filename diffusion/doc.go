// Package diffusion provides a CGo wrapper for stable-diffusion.cpp and the
// local generation backend built on it.
//
// The package implements pipeline.Backend: the Manager asks it to load a
// pipeline for a modality, and each loaded pipeline is a Handle that runs
// delegated inference calls. It follows atomic design principles:
//
//   - Atoms: Pure functions (ModelFileName, ChecksumFile, frame encoding)
//   - Molecules: Simple compositions (FindModelFile, VerifyChecksum)
//   - Organism: Backend, the complete pipeline.Backend implementation
//
// # Quick Start
//
// Basic usage through the pipeline manager:
//
//	backend := diffusion.NewBackend(cfg.ModelCacheDir, diffusion.WithLogger(logger))
//	caps := device.DetectHost(cfg.ForceCPU, logger)
//	mgr := pipeline.NewManager(backend, caps, pipeline.WithLogger(logger))
//
//	result, err := mgr.Generate(ctx, pipeline.TextToImage, pipeline.Request{
//	    Prompt: "a sunset over mountains",
//	    Seed:   -1,
//	})
//
// # Model Files
//
// Model identifiers resolve to safetensors files under the model cache
// directory. The identifier "runwayml/stable-diffusion-v1-5" maps to
// "runwayml--stable-diffusion-v1-5.safetensors"; when the load spec names
// the fp16 variant, the "-fp16" suffixed file is preferred if present.
//
// # Build Tags
//
// The package supports two build modes:
//
//   - Stub mode (default): go build
//     Pipeline construction validates the model file but generation returns
//     errors. Lets the rest of the system build and test without the C
//     library.
//
//   - Real mode: CGO_ENABLED=1 go build -tags sd
//     Requires stable-diffusion.cpp compiled as a shared library, with
//     CGO_CFLAGS and CGO_LDFLAGS pointing at it.
//
// # Error Handling
//
// The package defines domain-specific errors:
//
//   - ErrModelNotFound: no model file in the cache directory
//   - ErrModelLoadFailed: the library failed to load the model
//   - ErrModelCorrupted: model checksum mismatch
//   - ErrGenerationFailed: inference failed
//   - ErrOutOfMemory: accelerator memory exhausted
//   - ErrOptimizationUnavailable: requested optimization not in this build
//
// Use errors.Is() for error checking.
package diffusion
