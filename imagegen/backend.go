package imagegen

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"aigen/device"
	"aigen/pipeline"
)

// defaultModel is the image model used when none is configured.
const defaultModel = "dall-e-3"

// defaultBaseURL is the standard OpenAI API endpoint.
const defaultBaseURL = "https://api.openai.com/v1"

// Config holds configuration for the remote backend.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API endpoint. Default: https://api.openai.com/v1.
	// Azure OpenAI endpoints are accepted; local endpoints are rejected
	// because they do not serve the Images API.
	BaseURL string

	// Model is the image model to use. Default: dall-e-3.
	Model string

	// HTTPClient overrides the client used for API calls and downloads.
	HTTPClient *http.Client

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Backend implements pipeline.Backend over the OpenAI Images API.
//
// Thread Safety: Backend and its handles are safe for concurrent use. The
// underlying client handles connection pooling.
type Backend struct {
	client     *openai.Client
	downloader *downloader
	model      string
	logger     *zap.Logger
}

// NewBackend creates a remote image generation backend.
//
// Returns an error if:
//   - the API key is empty
//   - the endpoint is a local endpoint (localhost, 127.0.0.1), which does
//     not serve the Images API
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	if IsLocalEndpoint(endpoint) {
		return nil, fmt.Errorf("%w: %s", ErrLocalEndpoint, endpoint)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = endpoint
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Backend{
		client:     openai.NewClientWithConfig(clientConfig),
		downloader: newDownloader(cfg.HTTPClient),
		model:      model,
		logger:     logger,
	}, nil
}

// Model returns the configured image model name.
func (b *Backend) Model() string {
	return b.model
}

// Load returns a handle for the modality. Only text-to-image is available
// remotely; other modalities fail with ErrUnsupportedModality so the caller
// can surface a clear configuration error.
//
// The remote API has no per-model weights to load, so Load is cheap and the
// spec's ModelID is ignored in favor of the configured model.
func (b *Backend) Load(_ context.Context, spec pipeline.LoadSpec) (pipeline.Handle, error) {
	if spec.Modality != pipeline.TextToImage {
		return nil, fmt.Errorf("%w: %s (use the local provider)", ErrUnsupportedModality, spec.Modality)
	}

	return &remoteHandle{backend: b}, nil
}

// ReclaimMemory is a no-op; generation happens remotely.
func (b *Backend) ReclaimMemory(_ device.Accelerator) {}

// remoteHandle is the text-to-image pipeline handle for the remote API.
type remoteHandle struct {
	backend *Backend
}

// Generate requests images from the provider and downloads each temporary
// URL immediately, since those URLs expire.
func (h *remoteHandle) Generate(ctx context.Context, spec pipeline.GenerateSpec) (*pipeline.Result, error) {
	b := h.backend

	count := spec.ImageCount
	if count <= 0 {
		count = 1
	}

	req := openai.ImageRequest{
		Prompt:         spec.Prompt,
		Model:          b.model,
		ResponseFormat: openai.CreateImageResponseFormatURL,
		Size:           requestSize(spec.Width, spec.Height),
		N:              count,
	}
	// DALL-E 3 generates one image per request and supports styles;
	// DALL-E 2 is the reverse.
	if b.model == defaultModel {
		req.Style = openai.CreateImageStyleVivid
		req.N = 1
	}

	response, err := b.client.CreateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: image generation failed: %w", err)
	}
	if len(response.Data) == 0 {
		return nil, ErrEmptyResponse
	}

	artifacts := make([][]byte, 0, len(response.Data))
	for _, datum := range response.Data {
		if datum.URL == "" {
			return nil, fmt.Errorf("%w: empty image URL", ErrEmptyResponse)
		}
		data, err := b.downloader.fetch(ctx, datum.URL)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, data)
	}

	b.logger.Debug("remote generation complete",
		zap.String("model", b.model),
		zap.Int("images", len(artifacts)))

	return &pipeline.Result{Artifacts: artifacts, Seed: spec.Seed}, nil
}

// ApplyMemoryOptimization is a no-op for the remote provider; there is no
// local accelerator memory to trade against.
func (h *remoteHandle) ApplyMemoryOptimization(_ pipeline.MemoryOptimization) error {
	return nil
}

// Close is a no-op; the handle holds no remote resources.
func (h *remoteHandle) Close() error {
	return nil
}

// requestSize maps requested dimensions to the nearest size tier the Images
// API accepts. This is a pure function with no side effects.
func requestSize(width, height int) string {
	longest := width
	if height > longest {
		longest = height
	}
	switch {
	case longest <= 256:
		return openai.CreateImageSize256x256
	case longest <= 512:
		return openai.CreateImageSize512x512
	default:
		return openai.CreateImageSize1024x1024
	}
}

// Ensure Backend implements pipeline.Backend at compile time.
var _ pipeline.Backend = (*Backend)(nil)
