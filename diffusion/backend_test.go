//go:build !sd

package diffusion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"aigen/device"
	"aigen/pipeline"
)

// writeFakeModel drops a placeholder weight file into the cache directory.
func writeFakeModel(t *testing.T, dir, modelID string) {
	t.Helper()
	path := filepath.Join(dir, ModelFileName(modelID, ""))
	if err := os.WriteFile(path, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBackendLoad(t *testing.T) {
	dir := t.TempDir()
	writeFakeModel(t, dir, "test/model")
	backend := NewBackend(dir)

	h, err := backend.Load(context.Background(), pipeline.LoadSpec{
		Modality: pipeline.TextToImage,
		ModelID:  "test/model",
	})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	defer h.Close()
}

func TestBackendLoad_MissingModel(t *testing.T) {
	backend := NewBackend(t.TempDir())

	_, err := backend.Load(context.Background(), pipeline.LoadSpec{
		Modality: pipeline.TextToImage,
		ModelID:  "absent/model",
	})
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("error = %v, want ErrModelNotFound", err)
	}
}

func TestBackendLoad_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFakeModel(t, dir, "test/model")
	backend := NewBackend(dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backend.Load(ctx, pipeline.LoadSpec{Modality: pipeline.TextToImage, ModelID: "test/model"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestHandle_ApplyMemoryOptimization(t *testing.T) {
	dir := t.TempDir()
	writeFakeModel(t, dir, "test/model")
	backend := NewBackend(dir)

	h, err := backend.Load(context.Background(), pipeline.LoadSpec{
		Modality: pipeline.TextToImage,
		ModelID:  "test/model",
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	// Slicing is always available; the efficient-attention kernels are not
	// part of the stub build.
	if err := h.ApplyMemoryOptimization(pipeline.OptAttentionSlicing); err != nil {
		t.Errorf("ApplyMemoryOptimization(slicing) = %v, want nil", err)
	}
	err = h.ApplyMemoryOptimization(pipeline.OptEfficientAttention)
	if !errors.Is(err, ErrOptimizationUnavailable) {
		t.Errorf("ApplyMemoryOptimization(efficient-attention) = %v, want ErrOptimizationUnavailable", err)
	}
}

func TestHandle_GenerateStubFails(t *testing.T) {
	dir := t.TempDir()
	writeFakeModel(t, dir, "test/model")
	backend := NewBackend(dir)

	h, err := backend.Load(context.Background(), pipeline.LoadSpec{
		Modality: pipeline.TextToImage,
		ModelID:  "test/model",
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	_, err = h.Generate(context.Background(), pipeline.GenerateSpec{
		Prompt: "a cat",
		Width:  512, Height: 512, Steps: 20, GuidanceScale: 7.5, ImageCount: 1,
	})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("error = %v, want ErrGenerationFailed in stub mode", err)
	}
}

func TestHandle_CloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFakeModel(t, dir, "test/model")
	backend := NewBackend(dir)

	h, err := backend.Load(context.Background(), pipeline.LoadSpec{
		Modality: pipeline.TextToImage,
		ModelID:  "test/model",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := h.Close(); err != nil {
		t.Errorf("first Close() = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}

	_, err = h.Generate(context.Background(), pipeline.GenerateSpec{Prompt: "x", ImageCount: 1})
	if !errors.Is(err, ErrPipelineClosed) {
		t.Errorf("Generate after Close = %v, want ErrPipelineClosed", err)
	}
	if err := h.ApplyMemoryOptimization(pipeline.OptAttentionSlicing); !errors.Is(err, ErrPipelineClosed) {
		t.Errorf("ApplyMemoryOptimization after Close = %v, want ErrPipelineClosed", err)
	}
}

func TestBackendReclaimMemory_NoAccelerator(t *testing.T) {
	// A no-op that must not panic.
	NewBackend(t.TempDir()).ReclaimMemory(device.AcceleratorNone)
}

func TestBackendInfo_StubMode(t *testing.T) {
	info := BackendInfo()
	if info == "" {
		t.Error("BackendInfo() returned empty string")
	}
}
