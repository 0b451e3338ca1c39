package commands

import (
	"fmt"

	"aigen/core"
	"aigen/device"
	"aigen/diffusion"
	"aigen/imagegen"
	"aigen/pipeline"
)

// buildManager tunes the process environment, detects device capabilities,
// and constructs the pipeline manager over the configured backend.
//
// Commands call this lazily so that informational commands (version, info,
// outputs) never touch the generation stack.
func (app *App) buildManager() (*pipeline.Manager, device.Capabilities, error) {
	cfg := app.Config

	device.Tune(cfg.ModelCacheDir, cfg.ForceCPU, app.Logger)
	caps := device.DetectHost(cfg.ForceCPU, app.Logger)

	var backend pipeline.Backend
	switch cfg.ImageProvider {
	case core.ProviderOpenAI:
		b, err := imagegen.NewBackend(imagegen.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIImageModel,
			Logger: app.Logger,
		})
		if err != nil {
			return nil, caps, fmt.Errorf("configure image provider: %w", err)
		}
		backend = b
	default:
		backend = diffusion.NewBackend(cfg.ModelCacheDir, diffusion.WithLogger(app.Logger))
	}

	opts := []pipeline.ManagerOption{pipeline.WithLogger(app.Logger)}
	if cfg.ModelsFile != "" {
		reg, err := pipeline.LoadRegistryFile(cfg.ModelsFile)
		if err != nil {
			return nil, caps, fmt.Errorf("load model registry: %w", err)
		}
		opts = append(opts, pipeline.WithRegistry(reg))
	}

	return pipeline.NewManager(backend, caps, opts...), caps, nil
}
