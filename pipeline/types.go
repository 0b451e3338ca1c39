package pipeline

import (
	"fmt"
	"strings"

	"aigen/device"
)

// Modality is one of the three generation modes.
type Modality int

const (
	// TextToImage generates images from a text prompt.
	TextToImage Modality = iota
	// ImageToImage transforms an init image guided by a text prompt.
	ImageToImage
	// TextToVideo generates a frame sequence from a text prompt.
	TextToVideo
)

// String returns the modality name used in logs, the registry file, and API
// paths.
func (m Modality) String() string {
	switch m {
	case TextToImage:
		return "text-to-image"
	case ImageToImage:
		return "image-to-image"
	case TextToVideo:
		return "text-to-video"
	default:
		return "unknown"
	}
}

// IsVideo reports whether the modality produces frame sequences.
func (m Modality) IsVideo() bool {
	return m == TextToVideo
}

// Modalities lists every supported modality.
func Modalities() []Modality {
	return []Modality{TextToImage, ImageToImage, TextToVideo}
}

// ParseModality converts a modality name to its enum value.
func ParseModality(s string) (Modality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text-to-image", "txt2img":
		return TextToImage, nil
	case "image-to-image", "img2img":
		return ImageToImage, nil
	case "text-to-video", "txt2vid":
		return TextToVideo, nil
	default:
		return TextToImage, fmt.Errorf("%w: %q", ErrUnknownModality, s)
	}
}

// DefaultStrength is the image-to-image transformation strength used when
// the caller does not supply one.
const DefaultStrength = 0.75

// Request describes one generation call. Parameter override fields use the
// zero value to mean "unset"; unset fields take the capability-derived
// defaults at generation time.
type Request struct {
	Prompt         string
	NegativePrompt string

	// ModelID overrides the registry default for the modality. Only
	// consulted on the load that first constructs the pipeline.
	ModelID string

	// Image overrides apply to TextToImage and ImageToImage.
	Image device.ImageParams

	// Video overrides apply to TextToVideo.
	Video device.VideoParams

	// InitImage is the encoded input image for ImageToImage.
	InitImage []byte

	// Strength is the img2img transformation strength in (0, 1].
	// Zero means DefaultStrength.
	Strength float64

	// Seed makes generation reproducible when >= 0; negative requests a
	// random seed. The seed actually used is reported in the Result.
	Seed int64
}

// Validate checks a request before any backend work happens.
func (r Request) Validate(m Modality) error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", ErrInvalidParams)
	}
	if m == ImageToImage && len(r.InitImage) == 0 {
		return fmt.Errorf("%w: image-to-image requires an init image", ErrInvalidParams)
	}
	if r.Strength < 0 || r.Strength > 1 {
		return fmt.Errorf("%w: strength %.2f must be in (0, 1]", ErrInvalidParams, r.Strength)
	}
	return nil
}

// Result holds the artifacts of one generation call.
type Result struct {
	// Artifacts are encoded PNG images: the generated images for image
	// modalities, or the ordered frames for video.
	Artifacts [][]byte

	// Seed is the seed actually used, for reproduction.
	Seed int64
}
