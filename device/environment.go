package device

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"aigen/core"
)

// Threading variables written by the tuner.
const (
	envTokenizersParallelism = "TOKENIZERS_PARALLELISM"
	envTransformersCache     = "TRANSFORMERS_CACHE"
	envHFHome                = "HF_HOME"
	envMKLThreads            = "MKL_NUM_THREADS"
	envNumexprThreads        = "NUMEXPR_NUM_THREADS"
	envOpenBLASThreads       = "OPENBLAS_NUM_THREADS"
	envOMPThreads            = "OMP_NUM_THREADS"
	envCUDAVisibleDevices    = "CUDA_VISIBLE_DEVICES"

	// maxThreadCap bounds OMP threads for stability on many-core machines.
	maxThreadCap = 8
)

var tuneOnce sync.Once

// ComputeEnvironment returns the environment variables the tuner wants to
// set for the given host. This is a pure function; Tune applies the result.
//
// ARM hosts disable Intel MKL threading (MKL is Intel-only) and set an
// OpenBLAS thread count instead; everything else gets a generic OMP thread
// cap of min(cores, 8). A force-CPU override also clears GPU visibility.
func ComputeEnvironment(host HostInfo, cacheDir string, forceCPU bool) map[string]string {
	vars := map[string]string{
		envTokenizersParallelism: "false",
		envTransformersCache:     filepath.Join(cacheDir, "transformers"),
		envHFHome:                filepath.Join(cacheDir, "huggingface"),
	}

	if forceCPU {
		vars[envCUDAVisibleDevices] = ""
	}

	if IsARMClass(host.Architecture, host.Processor) {
		vars[envMKLThreads] = "1"
		vars[envNumexprThreads] = "1"
		vars[envOpenBLASThreads] = "4"
	} else {
		cores := host.NumCPU
		if cores < 1 {
			cores = 4
		}
		vars[envOMPThreads] = strconv.Itoa(min(cores, maxThreadCap))
	}

	return vars
}

// Tune applies performance environment defaults for the current host,
// exactly once per process, before any model load.
//
// Each variable is only written when the surrounding environment has not
// already specified it, including variables preset to the empty string.
// Cache directories referenced by the variables are created.
func Tune(cacheDir string, forceCPU bool, logger *zap.Logger) {
	tuneOnce.Do(func() {
		tune(CurrentHost(), cacheDir, forceCPU, logger)
	})
}

// tune is the Once-free body of Tune, separated for tests.
func tune(host HostInfo, cacheDir string, forceCPU bool, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	vars := ComputeEnvironment(host, cacheDir, forceCPU)
	for key, value := range vars {
		if core.EnvIsSet(key) {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			logger.Warn("failed to set environment variable", zap.String("key", key), zap.Error(err))
			continue
		}
		logger.Debug("environment tuned", zap.String("key", key), zap.String("value", value))
	}

	for _, dir := range []string{vars[envTransformersCache], vars[envHFHome]} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Warn("failed to create cache directory", zap.String("dir", dir), zap.Error(err))
		}
	}
}
