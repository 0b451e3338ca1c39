package metrics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// ErrGPUUnavailable indicates NVML could not reach a GPU.
var ErrGPUUnavailable = errors.New("metrics: GPU unavailable")

// NVMLReader reads GPU metrics through the NVIDIA Management Library.
// NVML initializes lazily on first read and stays initialized for the
// process lifetime; Close shuts it down.
type NVMLReader struct {
	mu          sync.Mutex
	initialized bool
}

// NewNVMLReader creates an NVMLReader. No NVML calls happen until the first
// ReadGPUMetrics, so construction is safe on machines without a GPU.
func NewNVMLReader() *NVMLReader {
	return &NVMLReader{}
}

// ReadGPUMetrics samples utilization, temperature, and memory from GPU 0.
func (r *NVMLReader) ReadGPUMetrics() (GPUMetrics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		if ret := nvml.Init(); ret != nvml.SUCCESS {
			return GPUMetrics{}, fmt.Errorf("%w: NVML init: %s", ErrGPUUnavailable, nvml.ErrorString(ret))
		}
		r.initialized = true
	}

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		return GPUMetrics{}, fmt.Errorf("%w: device handle: %s", ErrGPUUnavailable, nvml.ErrorString(ret))
	}

	var metrics GPUMetrics

	if util, ret := device.GetUtilizationRates(); ret == nvml.SUCCESS {
		metrics.Utilization = float64(util.Gpu)
	}
	if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
		metrics.Temperature = float64(temp)
	}

	mem, ret := device.GetMemoryInfo()
	if ret != nvml.SUCCESS {
		return GPUMetrics{}, fmt.Errorf("%w: memory info: %s", ErrGPUUnavailable, nvml.ErrorString(ret))
	}
	metrics.MemoryTotal = int64(mem.Total)
	metrics.MemoryUsed = int64(mem.Used)
	metrics.MemoryFree = int64(mem.Free)

	return metrics, nil
}

// Close shuts NVML down. Safe to call without a prior successful read.
func (r *NVMLReader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		nvml.Shutdown()
		r.initialized = false
	}
}

// Ensure NVMLReader implements GPUReader at compile time.
var _ GPUReader = (*NVMLReader)(nil)
