// This file contains the GPUCollector, which periodically samples GPU state
// and feeds the Store, keeping a bounded history for the dashboard charts.
package metrics

import (
	"context"
	"sync"
	"time"
)

// GPUReader is the interface for reading GPU metrics. The real
// implementation uses NVML (see NVMLReader); tests use a mock.
type GPUReader interface {
	// ReadGPUMetrics reads the current GPU metrics. Returns an error when
	// the GPU is unavailable.
	ReadGPUMetrics() (GPUMetrics, error)
}

// GPUCollectorConfig configures the GPUCollector behavior.
type GPUCollectorConfig struct {
	// CollectionInterval is how often to collect GPU metrics
	CollectionInterval time.Duration

	// HistorySize is the number of samples to retain (720 = 1 hour at 5s intervals)
	HistorySize int
}

// DefaultGPUCollectorConfig returns a default configuration.
func DefaultGPUCollectorConfig() GPUCollectorConfig {
	return GPUCollectorConfig{
		CollectionInterval: 5 * time.Second,
		HistorySize:        720,
	}
}

// GPUCollector periodically collects GPU metrics through a GPUReader and
// stores historical samples in a circular buffer. Collected metrics flow to
// the Store via the onMetrics callback.
type GPUCollector struct {
	mu sync.RWMutex

	config GPUCollectorConfig
	reader GPUReader

	history  []GPUMetrics
	histHead int
	histSize int
	histCap  int

	lastMetrics GPUMetrics
	available   bool
	lastError   error

	onMetrics func(GPUMetrics)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGPUCollector creates a GPUCollector reading through the given reader.
// The onMetrics callback is invoked for each successful collection.
func NewGPUCollector(config GPUCollectorConfig, reader GPUReader, onMetrics func(GPUMetrics)) *GPUCollector {
	if config.CollectionInterval < time.Second {
		config.CollectionInterval = 5 * time.Second
	}
	if config.HistorySize < 1 {
		config.HistorySize = 720
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &GPUCollector{
		config:    config,
		reader:    reader,
		history:   make([]GPUMetrics, config.HistorySize),
		histCap:   config.HistorySize,
		onMetrics: onMetrics,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins periodic collection in a background goroutine.
func (c *GPUCollector) Start() {
	c.wg.Add(1)
	go c.collectLoop()
}

// Stop halts collection and blocks until the goroutine has exited.
func (c *GPUCollector) Stop() {
	c.cancel()
	c.wg.Wait()
}

// IsAvailable returns true if the last collection succeeded.
func (c *GPUCollector) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

// LastError returns the most recent collection error, or nil.
func (c *GPUCollector) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// CurrentMetrics returns the most recently collected GPU metrics.
func (c *GPUCollector) CurrentMetrics() GPUMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastMetrics
}

// History returns the last N samples, oldest first. If limit exceeds the
// available samples, all are returned.
func (c *GPUCollector) History(limit int) []GPUMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if limit <= 0 || c.histSize == 0 {
		return []GPUMetrics{}
	}
	if limit > c.histSize {
		limit = c.histSize
	}

	result := make([]GPUMetrics, limit)
	for i := 0; i < limit; i++ {
		idx := (c.histHead - limit + i + c.histCap) % c.histCap
		result[i] = c.history[idx]
	}
	return result
}

// HistorySize returns the current number of samples in history.
func (c *GPUCollector) HistorySize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.histSize
}

func (c *GPUCollector) collectLoop() {
	defer c.wg.Done()

	// Collect immediately on start.
	c.collectOnce()

	ticker := time.NewTicker(c.config.CollectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.collectOnce()
		}
	}
}

func (c *GPUCollector) collectOnce() {
	metrics, err := c.reader.ReadGPUMetrics()

	c.mu.Lock()
	if err != nil {
		c.available = false
		c.lastError = err
		// Keep the last valid metrics but don't add to history.
	} else {
		c.available = true
		c.lastError = nil
		c.lastMetrics = metrics

		c.history[c.histHead] = metrics
		c.histHead = (c.histHead + 1) % c.histCap
		if c.histSize < c.histCap {
			c.histSize++
		}
	}
	current := c.lastMetrics
	c.mu.Unlock()

	if c.onMetrics != nil && err == nil {
		c.onMetrics(current)
	}
}

// MockGPUReader is a mock implementation of GPUReader for testing.
type MockGPUReader struct {
	mu      sync.Mutex
	metrics GPUMetrics
	err     error
	calls   int
}

// NewMockGPUReader creates a mock GPU reader with the specified metrics.
func NewMockGPUReader(metrics GPUMetrics) *MockGPUReader {
	return &MockGPUReader{metrics: metrics}
}

// SetMetrics updates the metrics returned by this mock.
func (m *MockGPUReader) SetMetrics(metrics GPUMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
}

// SetError sets an error to be returned by ReadGPUMetrics.
func (m *MockGPUReader) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ReadGPUMetrics returns the configured mock metrics or error.
func (m *MockGPUReader) ReadGPUMetrics() (GPUMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return GPUMetrics{}, m.err
	}
	return m.metrics, nil
}

// CallCount returns the number of times ReadGPUMetrics was called.
func (m *MockGPUReader) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
