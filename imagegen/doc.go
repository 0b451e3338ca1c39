// Package imagegen provides the remote OpenAI image generation backend.
//
// It implements pipeline.Backend over the OpenAI Images API, so deployments
// without local accelerator hardware can still serve text-to-image requests
// by setting IMAGE_PROVIDER=openai. Image-to-image and video stay local;
// the remote API does not cover them.
//
// This package composes:
//   - endpoints.go: pure endpoint classification atoms
//   - download.go: temporary URL download molecule
//   - backend.go: the Backend organism wiring both to the go-openai client
//
// # Quick Start
//
//	backend, err := imagegen.NewBackend(imagegen.Config{
//	    APIKey: cfg.OpenAIAPIKey,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mgr := pipeline.NewManager(backend, caps, pipeline.WithLogger(logger))
//
// # Error Handling
//
// The package defines domain-specific errors:
//
//   - ErrAPIKeyMissing: no API key configured
//   - ErrLocalEndpoint: endpoint points at a local server without image support
//   - ErrUnsupportedModality: modality not covered by the remote API
//   - ErrEmptyResponse: the API returned no image data
//   - ErrDownloadFailed: fetching the temporary image URL failed
//
// Use errors.Is() for error checking.
package imagegen
