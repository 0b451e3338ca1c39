package pipeline

import (
	"errors"
	"testing"
)

func TestParseModality(t *testing.T) {
	tests := []struct {
		input   string
		want    Modality
		wantErr bool
	}{
		{"text-to-image", TextToImage, false},
		{"txt2img", TextToImage, false},
		{"image-to-image", ImageToImage, false},
		{"img2img", ImageToImage, false},
		{"text-to-video", TextToVideo, false},
		{"txt2vid", TextToVideo, false},
		{"  Text-To-Image  ", TextToImage, false},
		{"audio", TextToImage, true},
		{"", TextToImage, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseModality(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownModality) {
					t.Errorf("ParseModality(%q) error = %v, want ErrUnknownModality", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseModality(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseModality(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestModalityString_RoundTrips(t *testing.T) {
	for _, m := range Modalities() {
		parsed, err := ParseModality(m.String())
		if err != nil {
			t.Errorf("ParseModality(%q) failed: %v", m.String(), err)
			continue
		}
		if parsed != m {
			t.Errorf("ParseModality(%q) = %v, want %v", m.String(), parsed, m)
		}
	}
}

func TestModalityIsVideo(t *testing.T) {
	if TextToImage.IsVideo() || ImageToImage.IsVideo() {
		t.Error("image modalities must not report as video")
	}
	if !TextToVideo.IsVideo() {
		t.Error("TextToVideo.IsVideo() = false, want true")
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name     string
		modality Modality
		req      Request
		wantErr  bool
	}{
		{"valid text-to-image", TextToImage, Request{Prompt: "a cat"}, false},
		{"valid img2img", ImageToImage, Request{Prompt: "a cat", InitImage: []byte("png"), Strength: 0.5}, false},
		{"img2img zero strength ok", ImageToImage, Request{Prompt: "a cat", InitImage: []byte("png")}, false},
		{"empty prompt", TextToImage, Request{}, true},
		{"blank prompt", TextToVideo, Request{Prompt: " \t "}, true},
		{"img2img missing init image", ImageToImage, Request{Prompt: "a cat"}, true},
		{"strength above one", ImageToImage, Request{Prompt: "a cat", InitImage: []byte("png"), Strength: 1.01}, true},
		{"negative strength", ImageToImage, Request{Prompt: "a cat", InitImage: []byte("png"), Strength: -0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(tt.modality)
			if tt.wantErr && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate() error = %v, want ErrInvalidParams", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestRandomSeed_NonNegative(t *testing.T) {
	for i := 0; i < 100; i++ {
		if seed := RandomSeed(); seed < 0 {
			t.Fatalf("RandomSeed() = %d, want non-negative", seed)
		}
	}
}
