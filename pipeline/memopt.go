package pipeline

import (
	"go.uber.org/zap"

	"aigen/device"
)

// optimizationPlan returns the ordered memory-optimization preference list
// for an accelerator. The first optimization that applies cleanly wins;
// later entries are fallbacks.
//
// CUDA prefers the efficient-attention implementation and falls back to
// slicing when the build lacks it. Metal and CPU apply slicing outright.
func optimizationPlan(accel device.Accelerator) []MemoryOptimization {
	if accel == device.AcceleratorCUDA {
		return []MemoryOptimization{OptEfficientAttention, OptAttentionSlicing}
	}
	return []MemoryOptimization{OptAttentionSlicing}
}

// applyMemoryOptimizations walks the plan in order and applies the first
// optimization the handle accepts. Failures are logged at warning level and
// never propagate; running without any optimization is acceptable.
func applyMemoryOptimizations(h Handle, plan []MemoryOptimization, logger *zap.Logger) {
	for _, opt := range plan {
		err := h.ApplyMemoryOptimization(opt)
		if err == nil {
			logger.Debug("memory optimization applied", zap.String("optimization", opt.String()))
			return
		}
		logger.Warn("memory optimization unavailable, falling back",
			zap.String("optimization", opt.String()),
			zap.Error(err))
	}
}
