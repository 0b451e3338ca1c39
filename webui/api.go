// This file contains the generation API organism: REST handlers that drive
// the pipeline manager and report results to the history database, the
// metrics store, and the WebSocket stream.
package webui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aigen/db"
	"aigen/device"
	"aigen/media"
	"aigen/metrics"
	"aigen/pipeline"
	"aigen/shutdown"
)

// maxUploadSize bounds image-to-image uploads (32 MiB).
const maxUploadSize = 32 << 20

// Generator is the slice of the pipeline manager the API needs.
// Implemented by *pipeline.Manager.
type Generator interface {
	Generate(ctx context.Context, m pipeline.Modality, req pipeline.Request) (*pipeline.Result, error)
	Capabilities() device.Capabilities
	Defaults() device.Defaults
	Loaded() []pipeline.Modality
}

// OperationLimiter gates generation work during shutdown.
// Implemented by *shutdown.Manager.
type OperationLimiter interface {
	WrapOperation(fn func() error) error
}

// API holds the REST handlers for the generation service.
//
// Endpoints:
//   - POST /api/generate/image           text-to-image
//   - POST /api/generate/image-to-image  multipart upload + params
//   - POST /api/generate/video           text-to-video
//   - GET  /api/outputs                  saved artifacts, newest first
//   - DELETE /api/outputs                remove all saved artifacts
//   - GET  /api/history                  recent generation records
//   - GET  /api/status                   capabilities, stats, uptime
//   - GET  /api/gpu                      GPU metrics with optional history
type API struct {
	generator   Generator
	history     *db.History
	store       *metrics.Store
	gpu         *metrics.GPUCollector
	broadcaster *Broadcaster
	limiter     OperationLimiter
	outputDir   string
	videoFPS    int
	logger      *zap.Logger
}

// APIConfig wires the API's collaborators. History, GPU collector,
// broadcaster, and limiter are optional.
type APIConfig struct {
	Generator   Generator
	History     *db.History
	Store       *metrics.Store
	GPU         *metrics.GPUCollector
	Broadcaster *Broadcaster
	Limiter     OperationLimiter
	OutputDir   string
	VideoFPS    int
	Logger      *zap.Logger
}

// NewAPI creates the API organism.
func NewAPI(cfg APIConfig) *API {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.VideoFPS <= 0 {
		cfg.VideoFPS = media.DefaultVideoFPS
	}

	return &API{
		generator:   cfg.Generator,
		history:     cfg.History,
		store:       cfg.Store,
		gpu:         cfg.GPU,
		broadcaster: cfg.Broadcaster,
		limiter:     cfg.Limiter,
		outputDir:   cfg.OutputDir,
		videoFPS:    cfg.VideoFPS,
		logger:      cfg.Logger,
	}
}

// RegisterRoutes registers the API routes on the given mux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/generate/image", a.HandleTextToImage)
	mux.HandleFunc("/api/generate/image-to-image", a.HandleImageToImage)
	mux.HandleFunc("/api/generate/video", a.HandleTextToVideo)
	mux.HandleFunc("/api/outputs", a.HandleOutputs)
	mux.HandleFunc("/api/history", a.HandleHistory)
	mux.HandleFunc("/api/status", a.HandleStatus)
	mux.HandleFunc("/api/gpu", a.HandleGPU)
}

// generateRequest is the JSON body for the generate endpoints. Zero-valued
// fields take capability-derived defaults.
type generateRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Model          string  `json:"model"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"steps"`
	GuidanceScale  float64 `json:"guidance_scale"`
	NumImages      int     `json:"num_images"`
	NumFrames      int     `json:"num_frames"`
	FPS            int     `json:"fps"`
	Strength       float64 `json:"strength"`

	// Seed is optional; absent means a random seed.
	Seed *int64 `json:"seed"`
}

// generateResponse reports a completed generation.
type generateResponse struct {
	RequestID  string   `json:"request_id"`
	Modality   string   `json:"modality"`
	Seed       int64    `json:"seed"`
	Files      []string `json:"files"`
	DurationMS int64    `json:"duration_ms"`
}

// toPipelineRequest maps the wire request onto the pipeline request types.
func (g generateRequest) toPipelineRequest(m pipeline.Modality) pipeline.Request {
	req := pipeline.Request{
		Prompt:         g.Prompt,
		NegativePrompt: g.NegativePrompt,
		ModelID:        g.Model,
		Strength:       g.Strength,
		Seed:           -1,
	}
	if g.Seed != nil {
		req.Seed = *g.Seed
	}

	if m.IsVideo() {
		req.Video = device.VideoParams{
			Width:         g.Width,
			Height:        g.Height,
			Steps:         g.Steps,
			GuidanceScale: g.GuidanceScale,
			FrameCount:    g.NumFrames,
		}
	} else {
		req.Image = device.ImageParams{
			Width:         g.Width,
			Height:        g.Height,
			Steps:         g.Steps,
			GuidanceScale: g.GuidanceScale,
			ImageCount:    g.NumImages,
		}
	}
	return req
}

// HandleTextToImage handles POST /api/generate/image.
func (a *API) HandleTextToImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	a.runGeneration(w, r, pipeline.TextToImage, body.toPipelineRequest(pipeline.TextToImage), a.videoFPS)
}

// HandleImageToImage handles POST /api/generate/image-to-image. The request
// is multipart form data with an "image" file plus the generate parameters
// as form fields.
func (a *API) HandleImageToImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	initImage, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "cannot read uploaded image")
		return
	}

	body := generateRequestFromForm(r)
	preq := body.toPipelineRequest(pipeline.ImageToImage)
	preq.InitImage = initImage

	a.runGeneration(w, r, pipeline.ImageToImage, preq, a.videoFPS)
}

// HandleTextToVideo handles POST /api/generate/video.
func (a *API) HandleTextToVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	fps := body.FPS
	if fps <= 0 {
		fps = a.videoFPS
	}
	a.runGeneration(w, r, pipeline.TextToVideo, body.toPipelineRequest(pipeline.TextToVideo), fps)
}

// generateRequestFromForm reads generate parameters from form fields.
func generateRequestFromForm(r *http.Request) generateRequest {
	body := generateRequest{
		Prompt:         r.FormValue("prompt"),
		NegativePrompt: r.FormValue("negative_prompt"),
		Model:          r.FormValue("model"),
		Width:          formInt(r, "width"),
		Height:         formInt(r, "height"),
		Steps:          formInt(r, "steps"),
		NumImages:      formInt(r, "num_images"),
	}
	if v, err := strconv.ParseFloat(r.FormValue("guidance_scale"), 64); err == nil {
		body.GuidanceScale = v
	}
	if v, err := strconv.ParseFloat(r.FormValue("strength"), 64); err == nil {
		body.Strength = v
	}
	if v, err := strconv.ParseInt(r.FormValue("seed"), 10, 64); err == nil {
		body.Seed = &v
	}
	return body
}

func formInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.FormValue(key))
	return v
}

// runGeneration is the shared generation path: run the pipeline, save
// artifacts, persist the record, update metrics, and broadcast the outcome.
func (a *API) runGeneration(w http.ResponseWriter, r *http.Request, m pipeline.Modality, req pipeline.Request, fps int) {
	requestID := uuid.New().String()
	start := time.Now()

	if a.broadcaster != nil {
		a.broadcaster.BroadcastGeneration(GenerationEventData{
			RequestID: requestID,
			Modality:  m.String(),
			Status:    "started",
		})
	}

	var result *pipeline.Result
	run := func() error {
		var err error
		result, err = a.generator.Generate(r.Context(), m, req)
		return err
	}

	var err error
	if a.limiter != nil {
		err = a.limiter.WrapOperation(run)
	} else {
		err = run()
	}

	duration := time.Since(start)
	if err != nil {
		a.finishGeneration(requestID, m, req, nil, nil, duration, err)
		a.writeGenerationError(w, err)
		return
	}

	files, err := a.saveArtifacts(m, result, fps)
	if err != nil {
		a.finishGeneration(requestID, m, req, result, nil, duration, err)
		a.writeError(w, http.StatusInternalServerError, "cannot save artifacts: "+err.Error())
		return
	}

	a.finishGeneration(requestID, m, req, result, files, duration, nil)

	// Clients fetch artifacts via /outputs/<name>, so report base names.
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}

	a.writeJSON(w, http.StatusOK, generateResponse{
		RequestID:  requestID,
		Modality:   m.String(),
		Seed:       result.Seed,
		Files:      names,
		DurationMS: duration.Milliseconds(),
	})
}

// saveArtifacts writes generation output to the output directory: one PNG
// per image, or a single video container for frame sequences.
func (a *API) saveArtifacts(m pipeline.Modality, result *pipeline.Result, fps int) ([]string, error) {
	if m.IsVideo() {
		path, err := media.SaveVideo(a.outputDir, result.Artifacts, fps)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	files := make([]string, 0, len(result.Artifacts))
	for _, artifact := range result.Artifacts {
		path, err := media.SaveArtifact(a.outputDir, artifact)
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

// finishGeneration records the outcome in the database, the metrics store,
// and the WebSocket stream. Recording failures are logged, not surfaced.
func (a *API) finishGeneration(requestID string, m pipeline.Modality, req pipeline.Request, result *pipeline.Result, files []string, duration time.Duration, genErr error) {
	status := db.StatusSuccess
	errMsg := ""
	if genErr != nil {
		status = db.StatusError
		errMsg = genErr.Error()
	}

	if a.store != nil {
		a.store.RecordGeneration(metrics.GenerationSample{
			ID:        requestID,
			Modality:  m.String(),
			Status:    status,
			StartTime: time.Now().Add(-duration),
			Duration:  duration,
			ErrorMsg:  errMsg,
		})
	}

	if a.history != nil {
		rec := a.buildRecord(requestID, m, req, result, files, duration, status, errMsg)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := a.history.Insert(ctx, rec); err != nil {
			a.logger.Warn("cannot record generation history",
				zap.String("request_id", requestID), zap.Error(err))
		}
	}

	if a.broadcaster != nil {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = filepath.Base(f)
		}
		a.broadcaster.BroadcastGeneration(GenerationEventData{
			RequestID:  requestID,
			Modality:   m.String(),
			Status:     status,
			Files:      names,
			DurationMS: duration.Milliseconds(),
			Error:      errMsg,
		})
	}
}

func (a *API) buildRecord(requestID string, m pipeline.Modality, req pipeline.Request, result *pipeline.Result, files []string, duration time.Duration, status, errMsg string) db.GenerationRecord {
	defaults := a.generator.Defaults()

	rec := db.GenerationRecord{
		RequestID:      requestID,
		Modality:       m.String(),
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		ModelID:        req.ModelID,
		Accelerator:    a.generator.Capabilities().Accelerator.String(),
		DurationMS:     duration.Milliseconds(),
		Status:         status,
		ErrorMessage:   errMsg,
	}

	if m.IsVideo() {
		params := defaults.MergeVideo(req.Video)
		rec.Width, rec.Height, rec.Steps = params.Width, params.Height, params.Steps
		rec.GuidanceScale = params.GuidanceScale
		rec.FrameCount = params.FrameCount
	} else {
		params := defaults.MergeImage(req.Image)
		rec.Width, rec.Height, rec.Steps = params.Width, params.Height, params.Steps
		rec.GuidanceScale = params.GuidanceScale
	}

	if result != nil {
		rec.Seed = result.Seed
	}
	if len(files) > 0 {
		rec.OutputPath = files[0]
	}
	return rec
}

// OutputsResponse is the JSON response for GET /api/outputs.
type OutputsResponse struct {
	Outputs []media.Artifact `json:"outputs"`
	Count   int              `json:"count"`
}

// HandleOutputs handles GET and DELETE on /api/outputs.
func (a *API) HandleOutputs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		artifacts, err := media.ListArtifacts(a.outputDir)
		if err != nil {
			a.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		a.writeJSON(w, http.StatusOK, OutputsResponse{Outputs: artifacts, Count: len(artifacts)})

	case http.MethodDelete:
		removed, err := media.ClearArtifacts(a.outputDir)
		if err != nil {
			a.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		a.writeJSON(w, http.StatusOK, map[string]int{"removed": removed})

	default:
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// historyEntry is the wire form of a generation record.
type historyEntry struct {
	RequestID     string    `json:"request_id"`
	Modality      string    `json:"modality"`
	Prompt        string    `json:"prompt"`
	ModelID       string    `json:"model_id"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Steps         int       `json:"steps"`
	GuidanceScale float64   `json:"guidance_scale"`
	FrameCount    int       `json:"frame_count,omitempty"`
	Seed          int64     `json:"seed"`
	Accelerator   string    `json:"accelerator"`
	OutputPath    string    `json:"output_path,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// HandleHistory handles GET /api/history?limit=N.
func (a *API) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if a.history == nil {
		a.writeError(w, http.StatusNotImplemented, "history is not configured")
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	records, err := a.history.Recent(r.Context(), limit)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			RequestID:     rec.RequestID,
			Modality:      rec.Modality,
			Prompt:        rec.Prompt,
			ModelID:       rec.ModelID,
			Width:         rec.Width,
			Height:        rec.Height,
			Steps:         rec.Steps,
			GuidanceScale: rec.GuidanceScale,
			FrameCount:    rec.FrameCount,
			Seed:          rec.Seed,
			Accelerator:   rec.Accelerator,
			OutputPath:    rec.OutputPath,
			DurationMS:    rec.DurationMS,
			Status:        rec.Status,
			Error:         rec.ErrorMessage,
			CreatedAt:     rec.CreatedAt,
		})
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": entries,
		"count":   len(entries),
	})
}

// StatusResponse is the JSON response for GET /api/status.
type StatusResponse struct {
	Health       string                  `json:"health"`
	Version      string                  `json:"version"`
	Uptime       string                  `json:"uptime"`
	UptimeSecs   float64                 `json:"uptime_secs"`
	Capabilities capabilitiesView        `json:"capabilities"`
	Loaded       []string                `json:"loaded_pipelines"`
	Stats        metrics.GenerationStats `json:"stats"`
	GPUAvailable bool                    `json:"gpu_available"`
}

type capabilitiesView struct {
	Accelerator      string `json:"accelerator"`
	Precision        string `json:"precision"`
	MaxMemoryGiB     int    `json:"max_memory_gib"`
	RecommendedSteps int    `json:"recommended_steps"`
	RecommendedSize  int    `json:"recommended_size"`
	ARMOptimized     bool   `json:"arm_optimized"`
}

// HandleStatus handles GET /api/status.
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	caps := a.generator.Capabilities()
	loaded := a.generator.Loaded()
	loadedNames := make([]string, 0, len(loaded))
	for _, m := range loaded {
		loadedNames = append(loadedNames, m.String())
	}

	response := StatusResponse{
		Health: "running",
		Capabilities: capabilitiesView{
			Accelerator:      caps.Accelerator.String(),
			Precision:        caps.Precision.String(),
			MaxMemoryGiB:     caps.MaxMemoryGiB,
			RecommendedSteps: caps.RecommendedSteps,
			RecommendedSize:  caps.RecommendedSize,
			ARMOptimized:     caps.ARMOptimized,
		},
		Loaded: loadedNames,
	}

	if a.store != nil {
		status := a.store.SystemStatus()
		response.Health = status.Health
		response.Version = status.Version
		response.Uptime = formatUptime(status.Uptime)
		response.UptimeSecs = status.Uptime.Seconds()
		response.Stats = a.store.Stats()
	}
	if a.gpu != nil {
		response.GPUAvailable = a.gpu.IsAvailable()
	}

	a.writeJSON(w, http.StatusOK, response)
}

// GPUResponse is the JSON response for GET /api/gpu.
type GPUResponse struct {
	Available bool                 `json:"available"`
	Current   *metrics.GPUMetrics  `json:"current,omitempty"`
	History   []metrics.GPUMetrics `json:"history,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// HandleGPU handles GET /api/gpu?history=N.
func (a *API) HandleGPU(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if a.gpu == nil {
		a.writeJSON(w, http.StatusOK, GPUResponse{Available: false, Error: "GPU monitoring not configured"})
		return
	}

	response := GPUResponse{Available: a.gpu.IsAvailable()}
	if response.Available {
		current := a.gpu.CurrentMetrics()
		response.Current = &current

		if s := r.URL.Query().Get("history"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				response.History = a.gpu.History(n)
			}
		}
	} else if err := a.gpu.LastError(); err != nil {
		response.Error = err.Error()
	}

	a.writeJSON(w, http.StatusOK, response)
}

// writeGenerationError maps pipeline errors onto HTTP status codes.
func (a *API) writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidParams):
		a.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrManagerClosed), errors.Is(err, shutdown.ErrTrackerClosed):
		a.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		a.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// ErrorResponse is the wire form of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (a *API) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Warn("cannot encode response", zap.Error(err))
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// formatUptime renders an uptime compactly for humans.
func formatUptime(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Second).String()
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}
