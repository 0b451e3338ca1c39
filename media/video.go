package media

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/icza/mjpeg"
)

// ErrNoFrames indicates video assembly was called with an empty frame list.
var ErrNoFrames = errors.New("media: no frames to assemble")

// DefaultVideoFPS is the frame rate used for assembled videos when the
// caller does not supply one.
const DefaultVideoFPS = 8

// jpegQuality trades file size against frame fidelity in the AVI container.
const jpegQuality = 90

// SaveVideo assembles PNG frames into an MJPEG AVI file in the output
// directory under a collision-free name. All frames must share the
// dimensions of the first frame. Returns the full path written.
func SaveVideo(dir string, frames [][]byte, fps int) (string, error) {
	if len(frames) == 0 {
		return "", ErrNoFrames
	}
	if fps <= 0 {
		fps = DefaultVideoFPS
	}

	first, err := DecodeImage(frames[0])
	if err != nil {
		return "", fmt.Errorf("media: decoding first frame: %w", err)
	}
	width := first.Bounds().Dx()
	height := first.Bounds().Dy()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media: creating output directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.avi", videoPrefix, uuid.NewString())
	path := filepath.Join(dir, name)

	writer, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return "", fmt.Errorf("media: creating video container: %w", err)
	}

	for i, frame := range frames {
		jpegFrame, err := frameToJPEG(frame)
		if err != nil {
			writer.Close()
			os.Remove(path)
			return "", fmt.Errorf("media: encoding frame %d: %w", i, err)
		}
		if err := writer.AddFrame(jpegFrame); err != nil {
			writer.Close()
			os.Remove(path)
			return "", fmt.Errorf("media: adding frame %d: %w", i, err)
		}
	}

	if err := writer.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("media: finalizing video: %w", err)
	}
	return path, nil
}

// frameToJPEG transcodes one PNG frame to JPEG for the MJPEG container.
func frameToJPEG(frame []byte) ([]byte, error) {
	img, err := DecodeImage(frame)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecodeFail, err)
	}
	return buf.Bytes(), nil
}
