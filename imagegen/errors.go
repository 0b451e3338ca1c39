package imagegen

import "errors"

// Sentinel errors for the remote image generation backend.
var (
	ErrAPIKeyMissing       = errors.New("imagegen: OpenAI API key is required")
	ErrLocalEndpoint       = errors.New("imagegen: local endpoint does not support image generation")
	ErrUnsupportedModality = errors.New("imagegen: modality not supported by the remote provider")
	ErrEmptyResponse       = errors.New("imagegen: provider returned no image data")
	ErrDownloadFailed      = errors.New("imagegen: failed to download generated image")
)
