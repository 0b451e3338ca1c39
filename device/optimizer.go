package device

// Fixed generation constants shared by both modalities.
const (
	// DefaultGuidanceScale is the classifier-free guidance scale used when
	// the caller does not override it.
	DefaultGuidanceScale = 7.5

	// maxVideoSize caps video dimensions; video models are trained at far
	// lower resolutions than image models.
	maxVideoSize = 320

	lowMemoryThresholdGiB = 8
	lowMemoryImageSize    = 512
	lowMemoryImageSteps   = 10
	lowMemoryVideoFrames  = 8

	armVideoFrames     = 12
	defaultVideoFrames = 16
	minVideoSteps      = 10
)

// ImageParams holds generation parameters for image modalities.
// The zero value of a field means "unset" when used as an override.
type ImageParams struct {
	Width         int
	Height        int
	Steps         int
	GuidanceScale float64
	ImageCount    int
}

// VideoParams holds generation parameters for the video modality.
// The zero value of a field means "unset" when used as an override.
type VideoParams struct {
	Width         int
	Height        int
	Steps         int
	GuidanceScale float64
	FrameCount    int
}

// Defaults holds the derived per-modality parameter defaults.
type Defaults struct {
	Image ImageParams
	Video VideoParams
}

// Optimize derives generation parameter defaults from a capability record.
// It is a pure, deterministic function.
//
// Low-memory clamping runs last and wins over everything derived before it:
// under 8 GiB, images are held to 512x512 at 10 steps and videos to 8 frames.
func Optimize(caps Capabilities) Defaults {
	d := Defaults{
		Image: ImageParams{
			Width:         caps.RecommendedSize,
			Height:        caps.RecommendedSize,
			Steps:         caps.RecommendedSteps,
			GuidanceScale: DefaultGuidanceScale,
			ImageCount:    1,
		},
		Video: VideoParams{
			Width:         min(maxVideoSize, caps.RecommendedSize),
			Height:        min(maxVideoSize, caps.RecommendedSize),
			Steps:         max(minVideoSteps, caps.RecommendedSteps-5),
			GuidanceScale: DefaultGuidanceScale,
			FrameCount:    defaultVideoFrames,
		},
	}

	if caps.ARMOptimized {
		d.Video.FrameCount = armVideoFrames
	}

	if caps.MaxMemoryGiB < lowMemoryThresholdGiB {
		d.Image.Width = lowMemoryImageSize
		d.Image.Height = lowMemoryImageSize
		d.Image.Steps = lowMemoryImageSteps
		d.Video.FrameCount = lowMemoryVideoFrames
	}

	return d
}

// MergeImage overlays caller-supplied overrides onto the derived image
// defaults. Any explicitly supplied (non-zero) field replaces the derived
// value; unset fields keep the default.
func (d Defaults) MergeImage(o ImageParams) ImageParams {
	p := d.Image
	if o.Width > 0 {
		p.Width = o.Width
	}
	if o.Height > 0 {
		p.Height = o.Height
	}
	if o.Steps > 0 {
		p.Steps = o.Steps
	}
	if o.GuidanceScale > 0 {
		p.GuidanceScale = o.GuidanceScale
	}
	if o.ImageCount > 0 {
		p.ImageCount = o.ImageCount
	}
	return p
}

// MergeVideo overlays caller-supplied overrides onto the derived video
// defaults, field by field.
func (d Defaults) MergeVideo(o VideoParams) VideoParams {
	p := d.Video
	if o.Width > 0 {
		p.Width = o.Width
	}
	if o.Height > 0 {
		p.Height = o.Height
	}
	if o.Steps > 0 {
		p.Steps = o.Steps
	}
	if o.GuidanceScale > 0 {
		p.GuidanceScale = o.GuidanceScale
	}
	if o.FrameCount > 0 {
		p.FrameCount = o.FrameCount
	}
	return p
}
