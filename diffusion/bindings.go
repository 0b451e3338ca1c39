// This file contains the wrapper layer over the stable-diffusion.cpp C
// library. When the library is not available, the default build uses stub
// implementations; see bindings_stub.go.
//
// Build requirements for the real CGo implementation:
//   - stable-diffusion.cpp compiled as a shared library
//   - Header file: stable-diffusion.h
//   - CGO_CFLAGS and CGO_LDFLAGS set appropriately
//
// Example build with the real library:
//
//	CGO_CFLAGS="-I/path/to/stable-diffusion.cpp" \
//	CGO_LDFLAGS="-L/path/to/stable-diffusion.cpp/build -lstable-diffusion" \
//	go build -tags sd
package diffusion

import (
	"aigen/device"
	"aigen/pipeline"
)

// nativePipeline is an opaque handle to a loaded diffusion pipeline.
// In the real implementation this wraps a C pointer; the stub
// implementation uses an internal ID for tracking.
type nativePipeline struct {
	id        uint64
	modelPath string
	video     bool
	valid     bool
}

// IsValid returns whether this pipeline is loaded and usable.
func (p *nativePipeline) IsValid() bool {
	return p != nil && p.valid
}

// pipelineConfig tells the native layer how to construct a pipeline.
type pipelineConfig struct {
	ModelPath     string
	Threads       int
	Accelerator   device.Accelerator
	HalfPrecision bool
	Video         bool
}

// frameRequest is one native render call: a single image, or a single
// frame of a video sequence.
type frameRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	GuidanceScale  float64
	Seed           int64

	// InitImage holds encoded init image bytes for image-to-image, already
	// resized to Width x Height. Nil for text-to-image and video.
	InitImage []byte
	Strength  float64
}

// frameBuffer is the raw RGBA output of one render call.
type frameBuffer struct {
	Pixels []byte
	Width  int
	Height int
}

// newPipeline constructs a native pipeline for the given config.
//
// This function composes:
//   - ErrModelNotFound: when the model path does not exist
//   - ErrModelLoadFailed: when the C library fails to load the model
//
// The returned pipeline must be released with closePipeline.
func newPipeline(cfg pipelineConfig) (*nativePipeline, error) {
	return newPipelineImpl(cfg)
}

// renderFrame runs one native inference call on a loaded pipeline.
//
// This function composes:
//   - ErrGenerationFailed: when the C library fails to render
//   - ErrOutOfMemory: when accelerator memory is exhausted
func renderFrame(p *nativePipeline, req frameRequest) (*frameBuffer, error) {
	return renderFrameImpl(p, req)
}

// applyOptimization enables a memory optimization on a loaded pipeline.
// Returns ErrOptimizationUnavailable when this build lacks it.
func applyOptimization(p *nativePipeline, opt pipeline.MemoryOptimization) error {
	return applyOptimizationImpl(p, opt)
}

// closePipeline releases a native pipeline. Safe on nil or already-closed
// pipelines.
func closePipeline(p *nativePipeline) {
	closePipelineImpl(p)
}

// reclaimMemory asks the native layer to release cached accelerator memory
// after pipelines are closed. A no-op for CPU.
func reclaimMemory(accel device.Accelerator) {
	reclaimMemoryImpl(accel)
}

// BackendInfo returns a human-readable description of the compute backend
// this build links against.
func BackendInfo() string {
	return backendInfoImpl()
}
