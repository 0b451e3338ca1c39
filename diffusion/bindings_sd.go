//go:build sd && cgo && !stub

// Real CGo implementation of the stable-diffusion.cpp bindings.
// Build with: CGO_ENABLED=1 go build -tags sd
//
// Prerequisites:
//  1. stable-diffusion.cpp must be compiled as a shared library
//  2. Set CGO_CFLAGS to include the header path
//  3. Set CGO_LDFLAGS to link the library
//
// Example:
//
//	CGO_CFLAGS="-I${SD_CPP_PATH}" \
//	CGO_LDFLAGS="-L${SD_CPP_PATH}/build -lstable-diffusion -Wl,-rpath,${SD_CPP_PATH}/build" \
//	go build -tags sd

package diffusion

/*
#cgo CFLAGS: -I${SRCDIR}/../vendor/stable-diffusion.cpp
#cgo LDFLAGS: -L${SRCDIR}/../vendor/stable-diffusion.cpp/build -lstable-diffusion

// NOTE: The actual header include is commented out until the library is
// vendored. When stable-diffusion.cpp is integrated, uncomment:
//
// #include <stable-diffusion.h>
// #include <stdlib.h>

#include <stdlib.h>
#include <stdint.h>

// Placeholder type definitions - replace with actual stable-diffusion.h types
typedef void* sd_ctx_t;

// Placeholder function declarations - replace with actual library functions.
// Commented to prevent linker errors until the library is vendored:
//
// extern sd_ctx_t* sd_ctx_create(const char* model_path, int n_threads, int use_fp16);
// extern void sd_ctx_free(sd_ctx_t* ctx);
// extern uint8_t* sd_render(sd_ctx_t* ctx, const char* prompt, const char* negative_prompt,
//                           int width, int height, int steps, float cfg_scale, int64_t seed,
//                           const uint8_t* init_image, size_t init_image_len, float strength);
// extern void sd_free_image(uint8_t* img);
// extern void sd_set_attention_mode(sd_ctx_t* ctx, int mode);
// extern void sd_reclaim_memory(void);
// extern const char* sd_get_backend_info();
*/
import "C"

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"aigen/device"
	"aigen/pipeline"
)

// sdPipelineCounter generates unique IDs for pipelines.
var sdPipelineCounter uint64

// cgoPipeline holds the C context pointer alongside Go metadata.
type cgoPipeline struct {
	cCtx *C.sd_ctx_t
}

var (
	pipelineMapMu sync.Mutex
	pipelineMap   = make(map[uint64]*cgoPipeline)
)

func newPipelineImpl(cfg pipelineConfig) (*nativePipeline, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	} else if err != nil {
		return nil, fmt.Errorf("%w: unable to access %s: %v", ErrModelLoadFailed, cfg.ModelPath, err)
	}

	cModelPath := C.CString(cfg.ModelPath)
	defer C.free(unsafe.Pointer(cModelPath))

	// TODO: Uncomment when the library is vendored:
	// useFP16 := 0
	// if cfg.HalfPrecision {
	//     useFP16 = 1
	// }
	// cCtx := C.sd_ctx_create(cModelPath, C.int(cfg.Threads), C.int(useFP16))
	// if cCtx == nil {
	//     return nil, fmt.Errorf("%w: C library returned null context", ErrModelLoadFailed)
	// }
	//
	// id := atomic.AddUint64(&sdPipelineCounter, 1)
	// pipelineMapMu.Lock()
	// pipelineMap[id] = &cgoPipeline{cCtx: cCtx}
	// pipelineMapMu.Unlock()
	//
	// return &nativePipeline{
	//     id:        id,
	//     modelPath: cfg.ModelPath,
	//     video:     cfg.Video,
	//     valid:     true,
	// }, nil

	return nil, fmt.Errorf("%w: stable-diffusion.cpp CGo bindings not yet wired. "+
		"Library header integration pending", ErrModelLoadFailed)
}

func renderFrameImpl(p *nativePipeline, req frameRequest) (*frameBuffer, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: pipeline is nil or invalid", ErrGenerationFailed)
	}

	pipelineMapMu.Lock()
	cgoP, ok := pipelineMap[p.id]
	pipelineMapMu.Unlock()
	if !ok || cgoP == nil || cgoP.cCtx == nil {
		return nil, fmt.Errorf("%w: no valid C context found", ErrGenerationFailed)
	}

	cPrompt := C.CString(req.Prompt)
	defer C.free(unsafe.Pointer(cPrompt))

	cNegPrompt := C.CString(req.NegativePrompt)
	defer C.free(unsafe.Pointer(cNegPrompt))

	// TODO: Uncomment when the library is vendored:
	// var initPtr *C.uint8_t
	// if len(req.InitImage) > 0 {
	//     initPtr = (*C.uint8_t)(unsafe.Pointer(&req.InitImage[0]))
	// }
	// imgPtr := C.sd_render(
	//     cgoP.cCtx,
	//     cPrompt,
	//     cNegPrompt,
	//     C.int(req.Width),
	//     C.int(req.Height),
	//     C.int(req.Steps),
	//     C.float(req.GuidanceScale),
	//     C.int64_t(req.Seed),
	//     initPtr,
	//     C.size_t(len(req.InitImage)),
	//     C.float(req.Strength),
	// )
	// if imgPtr == nil {
	//     return nil, fmt.Errorf("%w: sd_render returned null", ErrGenerationFailed)
	// }
	// defer C.sd_free_image(imgPtr)
	//
	// size := req.Width * req.Height * 4
	// pixels := C.GoBytes(unsafe.Pointer(imgPtr), C.int(size))
	// return &frameBuffer{Pixels: pixels, Width: req.Width, Height: req.Height}, nil

	return nil, fmt.Errorf("%w: stable-diffusion.cpp CGo bindings not yet wired", ErrGenerationFailed)
}

func applyOptimizationImpl(p *nativePipeline, opt pipeline.MemoryOptimization) error {
	if !p.IsValid() {
		return fmt.Errorf("%w: pipeline is nil or invalid", ErrGenerationFailed)
	}

	// TODO: Uncomment when the library is vendored:
	// pipelineMapMu.Lock()
	// cgoP, ok := pipelineMap[p.id]
	// pipelineMapMu.Unlock()
	// if !ok {
	//     return fmt.Errorf("%w: no valid C context found", ErrGenerationFailed)
	// }
	// mode := 1 // attention slicing
	// if opt == pipeline.OptEfficientAttention {
	//     mode = 2
	// }
	// C.sd_set_attention_mode(cgoP.cCtx, C.int(mode))
	// return nil

	return fmt.Errorf("%w: %s", ErrOptimizationUnavailable, opt)
}

func closePipelineImpl(p *nativePipeline) {
	if p == nil {
		return
	}

	pipelineMapMu.Lock()
	cgoP, ok := pipelineMap[p.id]
	if ok {
		delete(pipelineMap, p.id)
	}
	pipelineMapMu.Unlock()

	if ok && cgoP != nil && cgoP.cCtx != nil {
		// TODO: Uncomment when the library is vendored:
		// C.sd_ctx_free(cgoP.cCtx)
	}

	p.valid = false
}

func reclaimMemoryImpl(accel device.Accelerator) {
	if accel == device.AcceleratorNone {
		return
	}
	// TODO: Uncomment when the library is vendored:
	// C.sd_reclaim_memory()
}

func backendInfoImpl() string {
	// TODO: Uncomment when the library is vendored:
	// cInfo := C.sd_get_backend_info()
	// if cInfo != nil {
	//     return C.GoString(cInfo)
	// }
	return "sd (CGo bindings - library integration pending)"
}

// Ensure atomic is used until the construction path is uncommented.
var _ = atomic.AddUint64
