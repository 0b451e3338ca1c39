package device

import (
	"runtime"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"go.uber.org/zap"

	"aigen/core"
)

const bytesPerGiB = 1 << 30

// hostProbe probes real accelerator availability.
//
// CUDA is probed through NVML; a missing driver or library is reported as
// absence, never as an error. Metal availability is a static platform check:
// Apple unified memory exists exactly on darwin/arm64.
type hostProbe struct {
	logger *zap.Logger
}

func newHostProbe(logger *zap.Logger) *hostProbe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &hostProbe{logger: logger}
}

// CUDAAvailable reports whether an NVIDIA device is visible and usable.
//
// An empty-but-present CUDA_VISIBLE_DEVICES hides every GPU, matching the
// driver's own semantics. NVML init failures (no driver, no library) degrade
// silently to "not available" and are logged at debug level only.
func (p *hostProbe) CUDAAvailable() (int, bool) {
	if core.EnvIsSet("CUDA_VISIBLE_DEVICES") && core.GetEnvOrDefault("CUDA_VISIBLE_DEVICES", "") == "" {
		p.logger.Debug("CUDA disabled via CUDA_VISIBLE_DEVICES")
		return 0, false
	}

	if ret := nvml.Init(); ret != nvml.SUCCESS {
		p.logger.Debug("NVML unavailable, assuming no CUDA device",
			zap.String("nvml_status", nvml.ErrorString(ret)))
		return 0, false
	}
	defer func() { _ = nvml.Shutdown() }()

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS || count == 0 {
		return 0, false
	}

	dev, ret := nvml.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		return 0, false
	}

	mem, ret := dev.GetMemoryInfo()
	if ret != nvml.SUCCESS {
		return 0, false
	}

	return int(mem.Total / bytesPerGiB), true
}

// MetalAvailable reports whether Apple unified-memory acceleration exists.
func (p *hostProbe) MetalAvailable() bool {
	return runtime.GOOS == "darwin" && runtime.GOARCH == "arm64"
}
