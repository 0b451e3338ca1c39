package metrics

import (
	"sync"
	"time"
)

// recentCapacity bounds the recent-generation ring buffer.
const recentCapacity = 100

// Store is the thread-safe in-memory metrics store behind the dashboard's
// status endpoints. It aggregates GenerationSample atoms, keeps the latest
// GPU snapshot, and reports system status.
type Store struct {
	mu sync.RWMutex

	stats   GenerationStats
	recent  []GenerationSample
	head    int
	size    int
	gpu     GPUMetrics
	gpuSeen bool

	version string
	started time.Time
}

// NewStore creates a Store. The version string surfaces in SystemStatus.
func NewStore(version string) *Store {
	return &Store{
		stats:   GenerationStats{ByModality: make(map[string]*ModalityStats)},
		recent:  make([]GenerationSample, recentCapacity),
		version: version,
		started: time.Now(),
	}
}

// RecordGeneration aggregates one completed generation.
func (s *Store) RecordGeneration(sample GenerationSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalProcessed++
	if sample.Status == "error" {
		s.stats.TotalErrors++
	} else {
		s.stats.TotalSuccess++
	}

	byMod := s.stats.ByModality[sample.Modality]
	if byMod == nil {
		byMod = &ModalityStats{}
		s.stats.ByModality[sample.Modality] = byMod
	}
	byMod.Count++
	if sample.Status == "error" {
		byMod.Errors++
	}
	byMod.TotalDuration += sample.Duration
	byMod.LastDuration = sample.Duration

	s.recent[s.head] = sample
	s.head = (s.head + 1) % recentCapacity
	if s.size < recentCapacity {
		s.size++
	}
}

// Stats returns a copy of the aggregated generation statistics.
func (s *Store) Stats() GenerationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := GenerationStats{
		TotalProcessed: s.stats.TotalProcessed,
		TotalSuccess:   s.stats.TotalSuccess,
		TotalErrors:    s.stats.TotalErrors,
		ByModality:     make(map[string]*ModalityStats, len(s.stats.ByModality)),
	}
	for modality, stats := range s.stats.ByModality {
		copied := *stats
		out.ByModality[modality] = &copied
	}
	return out
}

// RecentGenerations returns up to limit recent samples, newest first.
func (s *Store) RecentGenerations(limit int) []GenerationSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > s.size {
		limit = s.size
	}

	out := make([]GenerationSample, limit)
	for i := 0; i < limit; i++ {
		idx := (s.head - 1 - i + recentCapacity) % recentCapacity
		out[i] = s.recent[idx]
	}
	return out
}

// UpdateGPUMetrics stores the latest GPU snapshot.
func (s *Store) UpdateGPUMetrics(gpu GPUMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gpu = gpu
	s.gpuSeen = true
}

// GPUMetrics returns the latest GPU snapshot and whether one exists.
func (s *Store) GPUMetrics() (GPUMetrics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gpu, s.gpuSeen
}

// SystemStatus reports health, version, and uptime.
func (s *Store) SystemStatus() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SystemStatus{
		Health:    "running",
		Version:   s.version,
		Uptime:    time.Since(s.started),
		LastCheck: time.Now(),
	}
}
