// Package metrics provides in-memory runtime metrics for the dashboard:
// generation statistics, GPU utilization, and system status.
// This file contains atom-level type definitions with no behavior.
package metrics

import "time"

// GenerationSample represents a single completed generation request.
type GenerationSample struct {
	// ID is the request identifier for tracing
	ID string `json:"id"`

	// Modality is "text-to-image", "image-to-image", or "text-to-video"
	Modality string `json:"modality"`

	// Status indicates the outcome: "success" or "error"
	Status string `json:"status"`

	// StartTime is when the generation began
	StartTime time.Time `json:"start_time"`

	// Duration is the total generation time
	Duration time.Duration `json:"duration"`

	// ErrorMsg contains error details if Status is "error"
	ErrorMsg string `json:"error_msg,omitempty"`
}

// GPUMetrics represents GPU resource utilization. Memory values are bytes.
type GPUMetrics struct {
	// Utilization is the GPU utilization percentage (0-100)
	Utilization float64 `json:"utilization"`

	// Temperature is the GPU temperature in Celsius
	Temperature float64 `json:"temperature"`

	// MemoryTotal is the total GPU memory in bytes
	MemoryTotal int64 `json:"memory_total"`

	// MemoryUsed is the GPU memory currently in use (bytes)
	MemoryUsed int64 `json:"memory_used"`

	// MemoryFree is the available GPU memory (bytes)
	MemoryFree int64 `json:"memory_free"`
}

// ModalityStats represents aggregated statistics for one modality.
type ModalityStats struct {
	// Count is the number of generations processed
	Count int64 `json:"count"`

	// Errors is the number of failed generations
	Errors int64 `json:"errors"`

	// TotalDuration accumulates generation time for averaging
	TotalDuration time.Duration `json:"total_duration"`

	// LastDuration is the duration of the most recent generation
	LastDuration time.Duration `json:"last_duration"`
}

// AverageDuration returns the mean generation time, or zero with no samples.
func (m *ModalityStats) AverageDuration() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.TotalDuration / time.Duration(m.Count)
}

// GenerationStats represents aggregated generation statistics.
type GenerationStats struct {
	// TotalProcessed is the total number of generations
	TotalProcessed int64 `json:"total_processed"`

	// TotalSuccess is the count of successful generations
	TotalSuccess int64 `json:"total_success"`

	// TotalErrors is the count of failed generations
	TotalErrors int64 `json:"total_errors"`

	// ByModality contains per-modality statistics
	ByModality map[string]*ModalityStats `json:"by_modality"`
}

// SystemStatus represents the overall system health.
type SystemStatus struct {
	// Health indicates the system state: "running", "error", "stopped"
	Health string `json:"health"`

	// Version is the application version string
	Version string `json:"version"`

	// Uptime is the duration since the application started
	Uptime time.Duration `json:"uptime"`

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time `json:"last_check"`
}
