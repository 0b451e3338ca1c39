package diffusion

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"aigen/device"
	"aigen/media"
	"aigen/pipeline"
)

// Backend is the local stable-diffusion.cpp implementation of
// pipeline.Backend. Model weights resolve from the cache directory; see
// FindModelFile for the naming scheme.
type Backend struct {
	cacheDir string
	threads  int
	logger   *zap.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend's logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithThreads sets the native thread count. Defaults to runtime.NumCPU().
func WithThreads(n int) Option {
	return func(b *Backend) {
		if n > 0 {
			b.threads = n
		}
	}
}

// NewBackend creates a Backend loading model weights from cacheDir.
func NewBackend(cacheDir string, opts ...Option) *Backend {
	b := &Backend{
		cacheDir: cacheDir,
		threads:  runtime.NumCPU(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load constructs a native pipeline for the load spec. The model file is
// checksum-verified before loading when a checksum is registered for it.
func (b *Backend) Load(ctx context.Context, spec pipeline.LoadSpec) (pipeline.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := FindModelFile(b.cacheDir, spec.ModelID, spec.Variant)
	if err != nil {
		return nil, err
	}

	if err := VerifyChecksum(path); err != nil {
		return nil, err
	}

	b.logger.Debug("loading model weights",
		zap.String("path", path),
		zap.String("backend", BackendInfo()))

	native, err := newPipeline(pipelineConfig{
		ModelPath:     path,
		Threads:       b.threads,
		Accelerator:   spec.Accelerator,
		HalfPrecision: spec.Precision == device.PrecisionF16,
		Video:         spec.Modality.IsVideo(),
	})
	if err != nil {
		return nil, err
	}

	return &handle{
		native:   native,
		modality: spec.Modality,
		logger:   b.logger,
	}, nil
}

// ReclaimMemory releases cached accelerator memory after handles close.
func (b *Backend) ReclaimMemory(accel device.Accelerator) {
	reclaimMemory(accel)
	if accel != device.AcceleratorNone {
		b.logger.Debug("accelerator memory reclaimed", zap.String("accelerator", accel.String()))
	}
}

// handle is one loaded native pipeline. Render calls serialize on the
// mutex; the native layer is not reentrant per context.
type handle struct {
	mu       sync.Mutex
	native   *nativePipeline
	modality pipeline.Modality
	logger   *zap.Logger
	closed   bool
}

// Generate runs the delegated inference calls for one request: a single
// render per image, or one render per frame for video. The context is
// checked between frames, so cancellation takes effect at the next frame
// boundary.
func (h *handle) Generate(ctx context.Context, spec pipeline.GenerateSpec) (*pipeline.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrPipelineClosed
	}

	count := spec.ImageCount
	if h.modality.IsVideo() {
		count = spec.FrameCount
	}
	if count <= 0 {
		count = 1
	}

	initImage := spec.InitImage
	if len(initImage) > 0 {
		prepared, err := media.PrepareInitImage(initImage, spec.Width, spec.Height)
		if err != nil {
			return nil, fmt.Errorf("%w: init image: %v", ErrGenerationFailed, err)
		}
		initImage = prepared
	}

	artifacts := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req := frameRequest{
			Prompt:         spec.Prompt,
			NegativePrompt: spec.NegativePrompt,
			Width:          spec.Width,
			Height:         spec.Height,
			Steps:          spec.Steps,
			GuidanceScale:  spec.GuidanceScale,
			Seed:           spec.Seed + int64(i),
			InitImage:      initImage,
			Strength:       spec.Strength,
		}

		frame, err := renderFrame(h.native, req)
		if err != nil {
			return nil, err
		}

		encoded, err := media.EncodePNG(frame.Pixels, frame.Width, frame.Height)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding output: %v", ErrGenerationFailed, err)
		}
		artifacts = append(artifacts, encoded)
	}

	return &pipeline.Result{Artifacts: artifacts, Seed: spec.Seed}, nil
}

// ApplyMemoryOptimization enables one optimization on the native pipeline.
func (h *handle) ApplyMemoryOptimization(opt pipeline.MemoryOptimization) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrPipelineClosed
	}
	return applyOptimization(h.native, opt)
}

// Close releases the native pipeline. Safe to call multiple times.
func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	closePipeline(h.native)
	return nil
}
