package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeInvalidPort      = "INVALID_PORT"
	ErrCodeOutputDirFailed  = "OUTPUT_DIR_FAILED"
	ErrCodeCacheDirFailed   = "CACHE_DIR_FAILED"
	ErrCodeMissingAuth      = "MISSING_AUTH"
	ErrCodeInvalidProvider  = "INVALID_PROVIDER"
	ErrCodeModelsFileBroken = "MODELS_FILE_BROKEN"
)

// ErrInvalidPort returns an error for an out-of-range web port.
func ErrInvalidPort(port int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPort,
		Message: fmt.Sprintf("Invalid WEB_PORT value: %d", port),
		Action:  "Set WEB_PORT to a value between 1 and 65535",
	}
}

// ErrOutputDirFailed returns an error when the output directory cannot be created.
func ErrOutputDirFailed(dir string, reason error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeOutputDirFailed,
		Message: fmt.Sprintf("Cannot create output directory %s: %v", dir, reason),
		Action:  "Set OUTPUT_DIR to a writable location",
	}
}

// ErrCacheDirFailed returns an error when the model cache directory cannot be created.
func ErrCacheDirFailed(dir string, reason error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeCacheDirFailed,
		Message: fmt.Sprintf("Cannot create model cache directory %s: %v", dir, reason),
		Action:  "Set MODEL_CACHE_DIR to a writable location",
	}
}

// ErrMissingAuth returns an error for missing provider credentials.
func ErrMissingAuth(provider string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing authentication credentials for %s", provider),
		Action:  "Set OPENAI_API_KEY in your .env file (or use the local diffusion backend)",
	}
}

// ErrInvalidProvider returns an error for an unknown image provider name.
func ErrInvalidProvider(name string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidProvider,
		Message: fmt.Sprintf("Unknown IMAGE_PROVIDER value: %q", name),
		Action:  `Set IMAGE_PROVIDER to "local" or "openai"`,
	}
}

// ErrModelsFileBroken returns an error for an unparseable model registry file.
func ErrModelsFileBroken(path string, reason error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeModelsFileBroken,
		Message: fmt.Sprintf("Cannot parse model registry file %s: %v", path, reason),
		Action:  "Fix the YAML syntax or unset AIGEN_MODELS_FILE to use built-in defaults",
	}
}
