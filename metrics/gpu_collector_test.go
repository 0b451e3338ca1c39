package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestGPUCollector_CollectOnce(t *testing.T) {
	reader := NewMockGPUReader(GPUMetrics{Utilization: 42, Temperature: 60})
	var received []GPUMetrics
	c := NewGPUCollector(DefaultGPUCollectorConfig(), reader, func(m GPUMetrics) {
		received = append(received, m)
	})

	c.collectOnce()

	if !c.IsAvailable() {
		t.Error("IsAvailable() = false after successful collection")
	}
	if got := c.CurrentMetrics(); got.Utilization != 42 {
		t.Errorf("CurrentMetrics().Utilization = %v, want 42", got.Utilization)
	}
	if len(received) != 1 {
		t.Errorf("callback invoked %d times, want 1", len(received))
	}
	if c.HistorySize() != 1 {
		t.Errorf("HistorySize() = %d, want 1", c.HistorySize())
	}
}

func TestGPUCollector_ErrorKeepsLastMetrics(t *testing.T) {
	reader := NewMockGPUReader(GPUMetrics{Utilization: 42})
	c := NewGPUCollector(DefaultGPUCollectorConfig(), reader, nil)

	c.collectOnce()
	reader.SetError(errors.New("driver fell over"))
	c.collectOnce()

	if c.IsAvailable() {
		t.Error("IsAvailable() = true after failed collection")
	}
	if c.LastError() == nil {
		t.Error("LastError() = nil after failed collection")
	}
	if got := c.CurrentMetrics(); got.Utilization != 42 {
		t.Errorf("failed collection clobbered last metrics: %v", got)
	}
	if c.HistorySize() != 1 {
		t.Errorf("failed collection added to history: size %d", c.HistorySize())
	}
}

func TestGPUCollector_HistoryOrder(t *testing.T) {
	reader := NewMockGPUReader(GPUMetrics{})
	cfg := DefaultGPUCollectorConfig()
	cfg.HistorySize = 4
	c := NewGPUCollector(cfg, reader, nil)

	for i := 1; i <= 6; i++ {
		reader.SetMetrics(GPUMetrics{Utilization: float64(i)})
		c.collectOnce()
	}

	history := c.History(3)
	if len(history) != 3 {
		t.Fatalf("History(3) = %d samples, want 3", len(history))
	}
	// Oldest-first within the window: samples 4, 5, 6.
	for i, want := range []float64{4, 5, 6} {
		if history[i].Utilization != want {
			t.Errorf("history[%d].Utilization = %v, want %v", i, history[i].Utilization, want)
		}
	}
}

func TestGPUCollector_StartStop(t *testing.T) {
	reader := NewMockGPUReader(GPUMetrics{Utilization: 10})
	cfg := GPUCollectorConfig{CollectionInterval: time.Second, HistorySize: 8}
	c := NewGPUCollector(cfg, reader, nil)

	c.Start()
	// Start collects immediately; give the goroutine a moment.
	deadline := time.After(2 * time.Second)
	for reader.CallCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("collector never sampled")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	c.Stop()

	if reader.CallCount() == 0 {
		t.Error("reader never called")
	}
}
