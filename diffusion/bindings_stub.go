//go:build !sd || stub

// Stub implementation of the native bindings for when stable-diffusion.cpp
// is not available. Build with: go build
//
// Pipeline construction validates the model file so cache and lifecycle
// logic stays testable; render calls report that the library is missing.

package diffusion

import (
	"fmt"
	"os"
	"sync/atomic"

	"aigen/device"
	"aigen/pipeline"
)

// stubPipelineCounter generates unique IDs for stub pipelines.
var stubPipelineCounter uint64

func newPipelineImpl(cfg pipelineConfig) (*nativePipeline, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	} else if err != nil {
		return nil, fmt.Errorf("%w: unable to access %s: %v", ErrModelLoadFailed, cfg.ModelPath, err)
	}

	return &nativePipeline{
		id:        atomic.AddUint64(&stubPipelineCounter, 1),
		modelPath: cfg.ModelPath,
		video:     cfg.Video,
		valid:     true,
	}, nil
}

func renderFrameImpl(p *nativePipeline, _ frameRequest) (*frameBuffer, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: pipeline is nil or invalid", ErrGenerationFailed)
	}

	return nil, fmt.Errorf("%w: stable-diffusion.cpp library not available (stub mode). "+
		"Build with CGO and the 'sd' tag to enable generation", ErrGenerationFailed)
}

func applyOptimizationImpl(p *nativePipeline, opt pipeline.MemoryOptimization) error {
	if !p.IsValid() {
		return fmt.Errorf("%w: pipeline is nil or invalid", ErrGenerationFailed)
	}

	// Attention slicing is plain loop restructuring and always available;
	// the efficient-attention kernels only exist in the real build.
	if opt == pipeline.OptEfficientAttention {
		return fmt.Errorf("%w: %s", ErrOptimizationUnavailable, opt)
	}
	return nil
}

func closePipelineImpl(p *nativePipeline) {
	if p == nil {
		return
	}
	p.valid = false
}

func reclaimMemoryImpl(_ device.Accelerator) {
	// Nothing cached in stub mode.
}

func backendInfoImpl() string {
	return "stub (no stable-diffusion.cpp library linked)"
}
