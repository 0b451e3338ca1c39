package device

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComputeEnvironment_Generic(t *testing.T) {
	host := HostInfo{Architecture: "amd64", NumCPU: 16}
	vars := ComputeEnvironment(host, "/tmp/cache", false)

	if vars["TOKENIZERS_PARALLELISM"] != "false" {
		t.Errorf("TOKENIZERS_PARALLELISM = %q, want false", vars["TOKENIZERS_PARALLELISM"])
	}
	if vars["TRANSFORMERS_CACHE"] != filepath.Join("/tmp/cache", "transformers") {
		t.Errorf("TRANSFORMERS_CACHE = %q", vars["TRANSFORMERS_CACHE"])
	}
	if vars["HF_HOME"] != filepath.Join("/tmp/cache", "huggingface") {
		t.Errorf("HF_HOME = %q", vars["HF_HOME"])
	}
	// Thread cap is min(cores, 8).
	if vars["OMP_NUM_THREADS"] != "8" {
		t.Errorf("OMP_NUM_THREADS = %q, want 8 for a 16-core host", vars["OMP_NUM_THREADS"])
	}
	if _, ok := vars["MKL_NUM_THREADS"]; ok {
		t.Error("MKL_NUM_THREADS should not be set on non-ARM hosts")
	}
	if _, ok := vars["CUDA_VISIBLE_DEVICES"]; ok {
		t.Error("CUDA_VISIBLE_DEVICES should not be touched without FORCE_CPU")
	}
}

func TestComputeEnvironment_FewCores(t *testing.T) {
	vars := ComputeEnvironment(HostInfo{Architecture: "amd64", NumCPU: 4}, "/c", false)
	if vars["OMP_NUM_THREADS"] != "4" {
		t.Errorf("OMP_NUM_THREADS = %q, want 4", vars["OMP_NUM_THREADS"])
	}
}

func TestComputeEnvironment_ARM(t *testing.T) {
	vars := ComputeEnvironment(HostInfo{Architecture: "aarch64", NumCPU: 8}, "/c", false)

	if vars["MKL_NUM_THREADS"] != "1" {
		t.Errorf("MKL_NUM_THREADS = %q, want 1 on ARM", vars["MKL_NUM_THREADS"])
	}
	if vars["NUMEXPR_NUM_THREADS"] != "1" {
		t.Errorf("NUMEXPR_NUM_THREADS = %q, want 1 on ARM", vars["NUMEXPR_NUM_THREADS"])
	}
	if vars["OPENBLAS_NUM_THREADS"] != "4" {
		t.Errorf("OPENBLAS_NUM_THREADS = %q, want 4 on ARM", vars["OPENBLAS_NUM_THREADS"])
	}
	if _, ok := vars["OMP_NUM_THREADS"]; ok {
		t.Error("OMP_NUM_THREADS should not be set on ARM hosts")
	}
}

func TestComputeEnvironment_ForceCPUClearsVisibility(t *testing.T) {
	vars := ComputeEnvironment(HostInfo{Architecture: "amd64", NumCPU: 8}, "/c", true)

	value, ok := vars["CUDA_VISIBLE_DEVICES"]
	if !ok {
		t.Fatal("FORCE_CPU should clear CUDA_VISIBLE_DEVICES")
	}
	if value != "" {
		t.Errorf("CUDA_VISIBLE_DEVICES = %q, want empty", value)
	}
}

func TestTune_NeverOverwritesPresetVariables(t *testing.T) {
	// The host environment's explicit choice must survive tuning.
	t.Setenv("OMP_NUM_THREADS", "2")
	t.Setenv("TOKENIZERS_PARALLELISM", "true")

	cacheDir := t.TempDir()
	tune(HostInfo{Architecture: "amd64", NumCPU: 16}, cacheDir, false, nil)

	if got := os.Getenv("OMP_NUM_THREADS"); got != "2" {
		t.Errorf("OMP_NUM_THREADS overwritten to %q", got)
	}
	if got := os.Getenv("TOKENIZERS_PARALLELISM"); got != "true" {
		t.Errorf("TOKENIZERS_PARALLELISM overwritten to %q", got)
	}
}

func TestTune_SetsUnsetVariablesAndCreatesCacheDirs(t *testing.T) {
	// t.Setenv registers cleanup; unset after to get "absent" semantics.
	t.Setenv("TRANSFORMERS_CACHE", "")
	os.Unsetenv("TRANSFORMERS_CACHE")
	t.Setenv("HF_HOME", "")
	os.Unsetenv("HF_HOME")

	cacheDir := t.TempDir()
	tune(HostInfo{Architecture: "amd64", NumCPU: 4}, cacheDir, false, nil)

	want := filepath.Join(cacheDir, "transformers")
	if got := os.Getenv("TRANSFORMERS_CACHE"); got != want {
		t.Errorf("TRANSFORMERS_CACHE = %q, want %q", got, want)
	}
	if info, err := os.Stat(want); err != nil || !info.IsDir() {
		t.Errorf("transformers cache directory not created: %v", err)
	}
	if info, err := os.Stat(filepath.Join(cacheDir, "huggingface")); err != nil || !info.IsDir() {
		t.Errorf("huggingface cache directory not created: %v", err)
	}
}

func TestTune_RespectsEmptyPresetVisibility(t *testing.T) {
	// CUDA_VISIBLE_DEVICES preset to a real value must not be cleared even
	// under FORCE_CPU; the operator's explicit setting wins.
	t.Setenv("CUDA_VISIBLE_DEVICES", "1")

	tune(HostInfo{Architecture: "amd64", NumCPU: 4}, t.TempDir(), true, nil)

	if got := os.Getenv("CUDA_VISIBLE_DEVICES"); got != "1" {
		t.Errorf("CUDA_VISIBLE_DEVICES = %q, preset value should survive", got)
	}
}
