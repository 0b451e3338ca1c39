// Package media provides image and video artifact handling for generation
// results. It follows atomic design principles:
//
//   - Atoms: Pure functions (IsPNG, ValidatePNG, EncodePNG, FitWithin)
//   - Molecules: Simple compositions (PrepareInitImage, SaveArtifact, WriteAVI)
//
// # Artifacts
//
// Generation backends produce encoded PNG artifacts. This package validates
// them, persists them under the output directory with collision-free names,
// and assembles video frame sequences into MJPEG AVI containers.
//
// # Quick Start
//
// Save a generated image:
//
//	path, err := media.SaveArtifact(outputDir, imageData)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("saved to", path)
//
// Assemble video frames:
//
//	path, err := media.SaveVideo(outputDir, frames, 8)
//
// # Error Handling
//
// The package defines domain-specific errors:
//
//   - ErrImageEmpty: artifact data is empty
//   - ErrImageNotPNG: artifact is not a valid PNG
//   - ErrImageDecodeFail: artifact could not be decoded
//   - ErrNoFrames: video assembly called with no frames
//
// Use errors.Is() for error checking.
package media
