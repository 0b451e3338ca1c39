// Package core provides configuration loading, environment parsing, and
// shared error types for the aigen backend.
package core

import (
	"path/filepath"
)

// Image provider names accepted by IMAGE_PROVIDER.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

// Config holds all configuration values for the application.
//
// Values are read from the process environment (optionally seeded from a .env
// file by main). Directory fields are absolute paths, created on LoadConfig.
type Config struct {
	// Directories
	OutputDir     string // Generated artifacts (OUTPUT_DIR, default <data>/outputs)
	TempDir       string // Uploaded init images and scratch files (TEMP_DIR)
	ModelCacheDir string // Downloaded model weights (MODEL_CACHE_DIR, default <data>/cache)
	DBPath        string // SQLite generation history database

	// Model registry
	ModelsFile string // Optional YAML registry override (AIGEN_MODELS_FILE)

	// Device
	ForceCPU bool // FORCE_CPU: ignore accelerators entirely

	// Image provider selection
	ImageProvider    string // "local" (diffusion backend) or "openai"
	OpenAIAPIKey     string // Required when ImageProvider is "openai"
	OpenAIImageModel string // Image model identifier (default dall-e-3)

	// Web UI
	WebHost           string
	WebPort           int
	DashboardPassword string // Empty disables authentication

	// Runtime
	DevMode bool // DEV_MODE: debug logging, console-friendly output
}

// Default configuration values
const (
	DefaultWebHost          = "localhost"
	DefaultWebPort          = 8080
	DefaultOpenAIImageModel = "dall-e-3"
)

// LoadConfig reads configuration from the environment, applies defaults, and
// ensures the required directories exist.
//
// Returns a *ConfigError describing the first problem found.
func LoadConfig() (*Config, error) {
	dataDir, err := EnsureDataDirectory()
	if err != nil {
		return nil, ErrOutputDirFailed(GetDataDirectory(), err)
	}

	cfg := &Config{
		OutputDir:         GetEnvOrDefault("OUTPUT_DIR", filepath.Join(dataDir, "outputs")),
		TempDir:           GetEnvOrDefault("TEMP_DIR", filepath.Join(dataDir, "temp")),
		ModelCacheDir:     GetEnvOrDefault("MODEL_CACHE_DIR", filepath.Join(dataDir, "cache")),
		DBPath:            GetEnvOrDefault("DB_PATH", filepath.Join(dataDir, "history.db")),
		ModelsFile:        GetEnvOrDefault("AIGEN_MODELS_FILE", ""),
		ForceCPU:          ParseBoolEnv("FORCE_CPU", false),
		ImageProvider:     GetEnvOrDefault("IMAGE_PROVIDER", ProviderLocal),
		OpenAIAPIKey:      GetEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIImageModel:  GetEnvOrDefault("OPENAI_IMAGE_MODEL", DefaultOpenAIImageModel),
		WebHost:           GetEnvOrDefault("WEB_HOST", DefaultWebHost),
		WebPort:           ParseIntEnv("WEB_PORT", DefaultWebPort),
		DashboardPassword: GetEnvOrDefault("DASHBOARD_PASSWORD", ""),
		DevMode:           ParseBoolEnv("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := EnsureDirectory(cfg.OutputDir); err != nil {
		return nil, ErrOutputDirFailed(cfg.OutputDir, err)
	}
	if err := EnsureDirectory(cfg.TempDir); err != nil {
		return nil, ErrOutputDirFailed(cfg.TempDir, err)
	}
	if err := EnsureDirectory(cfg.ModelCacheDir); err != nil {
		return nil, ErrCacheDirFailed(cfg.ModelCacheDir, err)
	}

	return cfg, nil
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.WebPort < 1 || c.WebPort > 65535 {
		return ErrInvalidPort(c.WebPort)
	}

	switch c.ImageProvider {
	case ProviderLocal:
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return ErrMissingAuth(ProviderOpenAI)
		}
	default:
		return ErrInvalidProvider(c.ImageProvider)
	}

	return nil
}
