package media

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// sizeMultiple is the dimension granularity diffusion pipelines expect.
const sizeMultiple = 8

// FitWithin computes the largest dimensions that fit inside maxWidth x
// maxHeight while preserving the source aspect ratio, snapped down to a
// multiple of 8. This is a pure function with no side effects.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return 0, 0
	}

	scale := 1.0
	if width > maxWidth {
		scale = float64(maxWidth) / float64(width)
	}
	if s := float64(maxHeight) / float64(height); height > maxHeight && s < scale {
		scale = s
	}

	w := snapDown(int(float64(width) * scale))
	h := snapDown(int(float64(height) * scale))
	return w, h
}

func snapDown(v int) int {
	snapped := v - v%sizeMultiple
	if snapped < sizeMultiple {
		snapped = sizeMultiple
	}
	return snapped
}

// Resize scales an image to the exact target dimensions using Catmull-Rom
// interpolation.
func Resize(src image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d height=%d", ErrImageInvalidSize, width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst, nil
}

// PrepareInitImage decodes an input image for image-to-image generation and
// resizes it to the target dimensions, returning encoded PNG bytes. The
// target dimensions come from the resolved generation parameters, so the
// init image always matches the output canvas.
func PrepareInitImage(data []byte, width, height int) ([]byte, error) {
	src, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		src, err = Resize(src, width, height)
		if err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecodeFail, err)
	}
	return buf.Bytes(), nil
}
