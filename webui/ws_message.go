// Package webui provides the HTTP surface for the generation service: the
// JSON API, the WebSocket event stream, and the embedded dashboard page.
// This file contains WebSocket message types and constants.
package webui

import (
	"time"
)

// Message type constants for WebSocket communication.
const (
	// MessageTypeGeneration indicates a generation lifecycle event
	// (started, success, error).
	MessageTypeGeneration = "generation"

	// MessageTypeGPUUpdate indicates GPU metrics have been updated.
	MessageTypeGPUUpdate = "gpu_update"

	// MessageTypeSystemStatus indicates overall system health status.
	MessageTypeSystemStatus = "system_status"

	// MessageTypeError indicates a server-side error message.
	MessageTypeError = "error"
)

// WSMessage is the envelope for all WebSocket messages. The Data payload is
// decoded based on Type.
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// NewWSMessage creates a message with the current timestamp.
func NewWSMessage(msgType string, data interface{}) WSMessage {
	return WSMessage{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// GenerationEventData describes one generation lifecycle event.
type GenerationEventData struct {
	// RequestID identifies the generation request
	RequestID string `json:"request_id"`

	// Modality is "text-to-image", "image-to-image", or "text-to-video"
	Modality string `json:"modality"`

	// Status is "started", "success", or "error"
	Status string `json:"status"`

	// Files lists the saved artifact names (set on success)
	Files []string `json:"files,omitempty"`

	// DurationMS is the wall-clock generation time (set on completion)
	DurationMS int64 `json:"duration_ms,omitempty"`

	// Error contains details when Status is "error"
	Error string `json:"error,omitempty"`
}

// GPUUpdateData contains current GPU metrics for the dashboard chart.
type GPUUpdateData struct {
	Utilization   float64 `json:"utilization"`
	Temperature   float64 `json:"temperature"`
	MemoryUsed    int64   `json:"memory_used"`
	MemoryTotal   int64   `json:"memory_total"`
	MemoryPercent float64 `json:"memory_percent"`
}

// SystemStatusData contains overall system health information.
type SystemStatusData struct {
	Status         string        `json:"status"`
	Uptime         time.Duration `json:"uptime"`
	TotalProcessed int64         `json:"total_processed"`
	ErrorRate      float64       `json:"error_rate"`
	Version        string        `json:"version,omitempty"`
}

// ErrorData contains error information sent to clients.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewGenerationMessage creates a generation lifecycle event message.
func NewGenerationMessage(data GenerationEventData) WSMessage {
	return NewWSMessage(MessageTypeGeneration, data)
}

// NewGPUUpdateMessage creates a GPU metrics update message.
func NewGPUUpdateMessage(data GPUUpdateData) WSMessage {
	return NewWSMessage(MessageTypeGPUUpdate, data)
}

// NewSystemStatusMessage creates a system status message.
func NewSystemStatusMessage(data SystemStatusData) WSMessage {
	return NewWSMessage(MessageTypeSystemStatus, data)
}

// NewErrorMessage creates an error message.
func NewErrorMessage(code, message string) WSMessage {
	return NewWSMessage(MessageTypeError, ErrorData{Code: code, Message: message})
}
