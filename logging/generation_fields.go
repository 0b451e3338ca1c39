package logging

import (
	"time"

	"go.uber.org/zap"
)

// maxLoggedPromptLen caps how much of a user prompt ends up in the logs.
// Prompts can run to hundreds of characters; the first part is enough to
// correlate a log line with a request.
const maxLoggedPromptLen = 50

// PromptField returns a zap field containing a truncated prompt.
func PromptField(prompt string) zap.Field {
	if len(prompt) > maxLoggedPromptLen {
		prompt = prompt[:maxLoggedPromptLen] + "..."
	}
	return zap.String("prompt", prompt)
}

// GenerationFields returns the standard field set logged for every
// generation call: modality, dimensions, step count, seed, and duration.
func GenerationFields(modality string, width, height, steps int, seed int64, duration time.Duration) []zap.Field {
	return []zap.Field{
		zap.String("modality", modality),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("steps", steps),
		zap.Int64("seed", seed),
		zap.Duration("duration", duration),
	}
}

// DeviceFields returns the field set logged once at startup describing the
// detected acceleration backend.
func DeviceFields(accelerator, precision string, maxMemoryGiB, steps, size int, armOptimized bool) []zap.Field {
	return []zap.Field{
		zap.String("accelerator", accelerator),
		zap.String("precision", precision),
		zap.Int("max_memory_gib", maxMemoryGiB),
		zap.Int("recommended_steps", steps),
		zap.Int("recommended_size", size),
		zap.Bool("arm_optimized", armOptimized),
	}
}
