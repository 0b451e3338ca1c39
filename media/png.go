package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoding for DecodeImage
	"image/png"
)

// pngMagic identifies PNG data by its leading signature bytes.
var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Image validation errors.
var (
	ErrImageEmpty       = errors.New("media: image data is empty")
	ErrImageNotPNG      = errors.New("media: image data is not a valid PNG")
	ErrImageTooSmall    = errors.New("media: image data too small to be valid")
	ErrImageDecodeFail  = errors.New("media: failed to decode image")
	ErrImageInvalidSize = errors.New("media: invalid image dimensions")
)

// IsPNG checks if the given data starts with PNG magic bytes.
// This is a pure function with no side effects.
func IsPNG(data []byte) bool {
	if len(data) < len(pngMagic) {
		return false
	}
	return bytes.Equal(data[:len(pngMagic)], pngMagic)
}

// ValidatePNG validates that data is a decodable PNG image.
// This is a pure function with no side effects.
func ValidatePNG(data []byte) error {
	if len(data) == 0 {
		return ErrImageEmpty
	}

	// Minimum PNG file size: 8 (signature) + 25 (IHDR) + 12 (IEND).
	if len(data) < 45 {
		return ErrImageTooSmall
	}

	if !IsPNG(data) {
		return ErrImageNotPNG
	}

	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrImageDecodeFail, err)
	}

	return nil
}

// EncodePNG encodes raw RGBA pixels (4 bytes per pixel) to PNG format.
// This is a pure function with no side effects.
func EncodePNG(pixels []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d height=%d", ErrImageInvalidSize, width, height)
	}

	expectedLen := width * height * 4
	if len(pixels) != expectedLen {
		return nil, fmt.Errorf("%w: expected %d bytes for %dx%d RGBA, got %d",
			ErrImageInvalidSize, expectedLen, width, height, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecodeFail, err)
	}

	return buf.Bytes(), nil
}

// DecodeImage decodes PNG or JPEG data into an image.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrImageEmpty
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecodeFail, err)
	}
	return img, nil
}
