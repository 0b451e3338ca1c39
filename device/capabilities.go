package device

import (
	"strings"

	"go.uber.org/zap"
)

// Accelerator identifies the hardware path used for model inference.
type Accelerator int

const (
	// AcceleratorNone runs inference on the CPU.
	AcceleratorNone Accelerator = iota
	// AcceleratorCUDA runs inference on an NVIDIA GPU.
	AcceleratorCUDA
	// AcceleratorMetal runs inference on Apple unified memory.
	AcceleratorMetal
)

// String returns the accelerator name as used in logs and API responses.
func (a Accelerator) String() string {
	switch a {
	case AcceleratorCUDA:
		return "cuda"
	case AcceleratorMetal:
		return "metal"
	default:
		return "cpu"
	}
}

// Precision is the numeric precision used for model weights.
type Precision int

const (
	// PrecisionF32 is full precision, the safe default.
	PrecisionF32 Precision = iota
	// PrecisionF16 is half precision, used on CUDA devices.
	PrecisionF16
)

// String returns the precision name as used in variant selection.
func (p Precision) String() string {
	if p == PrecisionF16 {
		return "f16"
	}
	return "f32"
}

// Generic CPU defaults and the conservative ARM overrides.
const (
	defaultMaxMemoryGiB     = 8
	defaultRecommendedSteps = 20
	defaultRecommendedSize  = 512

	armMaxMemoryGiB     = 6
	armRecommendedSteps = 15
	armRecommendedSize  = 512
)

// Capabilities is an immutable record of the detected device capabilities.
// It is created once per process and passed as data; consumers never
// re-probe hardware.
type Capabilities struct {
	Accelerator      Accelerator
	Precision        Precision
	MaxMemoryGiB     int
	RecommendedSteps int
	RecommendedSize  int
	ARMOptimized     bool
}

// AcceleratorProbe reports accelerator backend availability. Probe methods
// must not fail loudly: an unavailable or uninstalled accelerator library is
// reported as plain absence.
type AcceleratorProbe interface {
	// CUDAAvailable reports whether a CUDA device is usable and, if so,
	// its total memory in GiB.
	CUDAAvailable() (memGiB int, ok bool)

	// MetalAvailable reports whether Apple unified-memory acceleration is
	// usable.
	MetalAvailable() bool
}

// IsARMClass reports whether an architecture/processor string pair denotes
// an ARM-class machine. This is a pure function.
func IsARMClass(arch, processor string) bool {
	arch = strings.ToLower(arch)
	processor = strings.ToLower(processor)
	for _, token := range []string{"arm", "aarch64"} {
		if strings.Contains(arch, token) {
			return true
		}
	}
	return strings.Contains(processor, "arm")
}

// Detect computes the capability record from host data and probe results.
// It is a pure function of its inputs.
//
// ARM adjustments are applied before the accelerator branches, so the
// conservative memory and step budgets hold for Metal and CPU hosts alike.
// A force-CPU override wins over any available hardware.
func Detect(host HostInfo, probe AcceleratorProbe, forceCPU bool) Capabilities {
	caps := Capabilities{
		Accelerator:      AcceleratorNone,
		Precision:        PrecisionF32,
		MaxMemoryGiB:     defaultMaxMemoryGiB,
		RecommendedSteps: defaultRecommendedSteps,
		RecommendedSize:  defaultRecommendedSize,
	}

	isARM := IsARMClass(host.Architecture, host.Processor)
	if isARM {
		caps.ARMOptimized = true
		caps.MaxMemoryGiB = armMaxMemoryGiB
		caps.RecommendedSteps = armRecommendedSteps
		caps.RecommendedSize = armRecommendedSize
	}

	if forceCPU {
		return caps
	}

	if !isARM {
		if memGiB, ok := probe.CUDAAvailable(); ok {
			caps.Accelerator = AcceleratorCUDA
			caps.Precision = PrecisionF16
			caps.MaxMemoryGiB = memGiB
			return caps
		}
	}

	if probe.MetalAvailable() {
		caps.Accelerator = AcceleratorMetal
		caps.Precision = PrecisionF32
		return caps
	}

	return caps
}

// DetectHost detects capabilities for the running process: real host
// introspection, the NVML CUDA probe, and the FORCE_CPU environment
// override. Probe failures degrade silently to CPU defaults.
func DetectHost(forceCPU bool, logger *zap.Logger) Capabilities {
	if logger == nil {
		logger = zap.NewNop()
	}

	host := CurrentHost()
	logger.Debug("detected host",
		zap.String("architecture", host.Architecture),
		zap.String("processor", host.Processor),
		zap.Int("cpus", host.NumCPU))

	caps := Detect(host, newHostProbe(logger), forceCPU)

	logger.Info("device capabilities",
		zap.String("accelerator", caps.Accelerator.String()),
		zap.String("precision", caps.Precision.String()),
		zap.Int("max_memory_gib", caps.MaxMemoryGiB),
		zap.Int("recommended_steps", caps.RecommendedSteps),
		zap.Int("recommended_size", caps.RecommendedSize),
		zap.Bool("arm_optimized", caps.ARMOptimized))

	return caps
}
