package media

import (
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name                  string
		width, height         int
		maxWidth, maxHeight   int
		wantWidth, wantHeight int
	}{
		{"already fits", 512, 512, 512, 512, 512, 512},
		{"wide image scaled down", 1024, 512, 512, 512, 512, 256},
		{"tall image scaled down", 512, 1024, 512, 512, 256, 512},
		{"snaps to multiple of 8", 500, 300, 512, 512, 496, 296},
		{"both dimensions over", 2048, 1024, 512, 512, 512, 256},
		{"invalid input", 0, 512, 512, 512, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitWithin(tt.width, tt.height, tt.maxWidth, tt.maxHeight)
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("FitWithin(%d, %d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.width, tt.height, tt.maxWidth, tt.maxHeight, w, h, tt.wantWidth, tt.wantHeight)
			}
			if w%8 != 0 || h%8 != 0 {
				if tt.wantWidth != 0 {
					t.Errorf("result %dx%d not a multiple of 8", w, h)
				}
			}
		})
	}
}

func TestPrepareInitImage_ResizesToTarget(t *testing.T) {
	src := encodeTestPNG(t, 100, 60)

	out, err := PrepareInitImage(src, 64, 64)
	if err != nil {
		t.Fatalf("PrepareInitImage() failed: %v", err)
	}

	img, err := DecodeImage(out)
	if err != nil {
		t.Fatalf("output did not decode: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Errorf("output = %v, want 64x64", img.Bounds())
	}
}

func TestPrepareInitImage_NoResizeWhenMatching(t *testing.T) {
	src := encodeTestPNG(t, 32, 32)

	out, err := PrepareInitImage(src, 32, 32)
	if err != nil {
		t.Fatalf("PrepareInitImage() failed: %v", err)
	}
	if err := ValidatePNG(out); err != nil {
		t.Errorf("output fails PNG validation: %v", err)
	}
}

func TestPrepareInitImage_RejectsGarbage(t *testing.T) {
	if _, err := PrepareInitImage([]byte("garbage"), 64, 64); err == nil {
		t.Error("expected error for undecodable input")
	}
}
