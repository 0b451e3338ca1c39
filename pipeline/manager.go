package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"aigen/device"
	"aigen/logging"
)

// Manager owns the per-modality pipeline cache and delegates generation to
// the configured Backend.
type Manager struct {
	backend  Backend
	caps     device.Capabilities
	defaults device.Defaults
	registry *Registry
	logger   *zap.Logger

	// mu guards the handle cache only. Generation calls run outside the
	// lock; see the package doc for the concurrency contract.
	mu      sync.Mutex
	handles map[Modality]Handle
	closed  bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRegistry replaces the built-in model registry.
func WithRegistry(reg *Registry) ManagerOption {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// NewManager creates a Manager for the given backend and capability record.
// Generation parameter defaults are derived from the capabilities once, here.
func NewManager(backend Backend, caps device.Capabilities, opts ...ManagerOption) *Manager {
	m := &Manager{
		backend:  backend,
		caps:     caps,
		defaults: device.Optimize(caps),
		registry: DefaultRegistry(),
		logger:   zap.NewNop(),
		handles:  make(map[Modality]Handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Capabilities returns the capability record the manager was built with.
func (m *Manager) Capabilities() device.Capabilities {
	return m.caps
}

// Defaults returns the derived generation parameter defaults.
func (m *Manager) Defaults() device.Defaults {
	return m.defaults
}

// Loaded returns the modalities with a live pipeline handle.
func (m *Manager) Loaded() []Modality {
	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := make([]Modality, 0, len(m.handles))
	for _, modality := range Modalities() {
		if _, ok := m.handles[modality]; ok {
			loaded = append(loaded, modality)
		}
	}
	return loaded
}

// EnsureLoaded constructs and caches the pipeline for a modality if it is
// not already loaded. Calling it again for a loaded modality is a no-op, so
// exactly one construction happens per modality until Cleanup.
//
// modelID overrides the registry default; pass "" for the default. Returns
// an error wrapping ErrPipelineLoad when construction fails.
func (m *Manager) EnsureLoaded(ctx context.Context, modality Modality, modelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureLoadedLocked(ctx, modality, modelID)
}

func (m *Manager) ensureLoadedLocked(ctx context.Context, modality Modality, modelID string) error {
	if m.closed {
		return ErrManagerClosed
	}
	if _, ok := m.handles[modality]; ok {
		return nil
	}

	resolved, err := m.registry.Resolve(modality, modelID)
	if err != nil {
		return err
	}

	spec := LoadSpec{
		Modality:    modality,
		ModelID:     resolved,
		Accelerator: m.caps.Accelerator,
		Precision:   m.caps.Precision,
	}
	if m.caps.Accelerator == device.AcceleratorCUDA {
		spec.Variant = "fp16"
	}

	m.logger.Info("loading pipeline",
		zap.String("modality", modality.String()),
		zap.String("model", resolved),
		zap.String("accelerator", m.caps.Accelerator.String()),
		zap.String("precision", m.caps.Precision.String()))

	start := time.Now()
	handle, err := m.backend.Load(ctx, spec)
	if err != nil {
		return fmt.Errorf("%w: %s (%s): %v", ErrPipelineLoad, modality, resolved, err)
	}

	applyMemoryOptimizations(handle, optimizationPlan(m.caps.Accelerator), m.logger)

	m.handles[modality] = handle
	m.logger.Info("pipeline loaded",
		zap.String("modality", modality.String()),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Generate runs one generation call, loading the modality's pipeline first
// if needed. Caller overrides are merged field-by-field over the
// capability-derived defaults; a negative request seed is replaced with a
// random one. The seed actually used is reported in the Result.
//
// A failed generation surfaces an error wrapping ErrGeneration and leaves
// the cached pipeline untouched.
func (m *Manager) Generate(ctx context.Context, modality Modality, req Request) (*Result, error) {
	if err := req.Validate(modality); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if err := m.ensureLoadedLocked(ctx, modality, req.ModelID); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	handle := m.handles[modality]
	m.mu.Unlock()

	spec := m.resolveSpec(modality, req)

	m.logger.Info("generating",
		logging.PromptField(req.Prompt),
		zap.String("modality", modality.String()),
		zap.Int("width", spec.Width),
		zap.Int("height", spec.Height),
		zap.Int("steps", spec.Steps),
		zap.Int64("seed", spec.Seed))

	start := time.Now()
	result, err := handle.Generate(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGeneration, modality, err)
	}
	result.Seed = spec.Seed

	m.logger.Info("generation complete",
		zap.String("modality", modality.String()),
		zap.Int("artifacts", len(result.Artifacts)),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

// resolveSpec merges request overrides with the derived defaults and pins
// the seed.
func (m *Manager) resolveSpec(modality Modality, req Request) GenerateSpec {
	spec := GenerateSpec{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Seed:           req.Seed,
	}
	if spec.Seed < 0 {
		spec.Seed = RandomSeed()
	}

	if modality.IsVideo() {
		p := m.defaults.MergeVideo(req.Video)
		spec.Width = p.Width
		spec.Height = p.Height
		spec.Steps = p.Steps
		spec.GuidanceScale = p.GuidanceScale
		spec.FrameCount = p.FrameCount
		return spec
	}

	p := m.defaults.MergeImage(req.Image)
	spec.Width = p.Width
	spec.Height = p.Height
	spec.Steps = p.Steps
	spec.GuidanceScale = p.GuidanceScale
	spec.ImageCount = p.ImageCount

	if modality == ImageToImage {
		spec.InitImage = req.InitImage
		spec.Strength = req.Strength
		if spec.Strength == 0 {
			spec.Strength = DefaultStrength
		}
	}
	return spec
}

// Cleanup releases every cached pipeline handle and triggers accelerator
// memory reclamation. The cache is empty afterwards; the next Generate call
// reloads its pipeline. Safe to call multiple times.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	handles := m.handles
	m.handles = make(map[Modality]Handle)
	m.mu.Unlock()

	for modality, handle := range handles {
		if err := handle.Close(); err != nil {
			m.logger.Warn("failed to close pipeline",
				zap.String("modality", modality.String()),
				zap.Error(err))
		}
	}
	if len(handles) > 0 {
		m.backend.ReclaimMemory(m.caps.Accelerator)
		m.logger.Info("pipeline cache cleaned up", zap.Int("released", len(handles)))
	}
}

// Close releases all handles and marks the manager closed; subsequent
// EnsureLoaded and Generate calls fail with ErrManagerClosed. Used at
// process shutdown, where Cleanup's reload semantics are wrong.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.Cleanup()
}
