package diffusion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestModelFileName(t *testing.T) {
	tests := []struct {
		modelID string
		variant string
		want    string
	}{
		{"runwayml/stable-diffusion-v1-5", "", "runwayml--stable-diffusion-v1-5.safetensors"},
		{"runwayml/stable-diffusion-v1-5", "fp16", "runwayml--stable-diffusion-v1-5-fp16.safetensors"},
		{"damo-vilab/text-to-video-ms-1.7b", "", "damo-vilab--text-to-video-ms-1.7b.safetensors"},
		{"local-model", "", "local-model.safetensors"},
	}

	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			if got := ModelFileName(tt.modelID, tt.variant); got != tt.want {
				t.Errorf("ModelFileName(%q, %q) = %q, want %q", tt.modelID, tt.variant, got, tt.want)
			}
		})
	}
}

func TestFindModelFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "runwayml--stable-diffusion-v1-5.safetensors")
	if err := os.WriteFile(base, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("base file found", func(t *testing.T) {
		path, err := FindModelFile(dir, "runwayml/stable-diffusion-v1-5", "")
		if err != nil {
			t.Fatalf("FindModelFile() failed: %v", err)
		}
		if path != base {
			t.Errorf("path = %q, want %q", path, base)
		}
	})

	t.Run("variant falls back to base", func(t *testing.T) {
		path, err := FindModelFile(dir, "runwayml/stable-diffusion-v1-5", "fp16")
		if err != nil {
			t.Fatalf("FindModelFile() failed: %v", err)
		}
		if path != base {
			t.Errorf("path = %q, want base fallback %q", path, base)
		}
	})

	t.Run("variant preferred when present", func(t *testing.T) {
		fp16 := filepath.Join(dir, "runwayml--stable-diffusion-v1-5-fp16.safetensors")
		if err := os.WriteFile(fp16, []byte("weights"), 0o644); err != nil {
			t.Fatal(err)
		}
		path, err := FindModelFile(dir, "runwayml/stable-diffusion-v1-5", "fp16")
		if err != nil {
			t.Fatalf("FindModelFile() failed: %v", err)
		}
		if path != fp16 {
			t.Errorf("path = %q, want variant %q", path, fp16)
		}
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := FindModelFile(dir, "absent/model", "")
		if !errors.Is(err, ErrModelNotFound) {
			t.Errorf("error = %v, want ErrModelNotFound", err)
		}
	})
}
