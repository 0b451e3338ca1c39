// Package device detects host acceleration capabilities and derives
// generation parameter defaults from them.
//
// The package has three responsibilities:
//
//   - Capability detection: Detect inspects the host architecture, processor
//     string, and accelerator probe results and produces an immutable
//     Capabilities record. DetectHost gathers the real host data.
//   - Parameter optimization: Optimize maps a Capabilities record to default
//     image and video generation parameters, with low-memory clamping.
//   - Environment tuning: Tune sets process-wide threading and model-cache
//     environment variables once, before any model load, never overwriting
//     values the surrounding environment already specifies.
//
// Detection policy:
//
//   - A FORCE_CPU override wins over any available hardware.
//   - CUDA is used on non-ARM hosts when the NVML probe reports a device;
//     precision is f16 and the memory budget is the reported VRAM.
//   - Apple unified memory (Metal) runs at f32; the backend historically
//     mishandles half precision.
//   - ARM hosts get conservative defaults (6 GiB, 15 steps, 512 px) applied
//     before any accelerator branch, so they hold for Metal and CPU alike.
//   - A failed or missing accelerator library is never an error: detection
//     silently falls back to CPU defaults.
//
// The Capabilities record is produced once per process and passed everywhere
// else as data; nothing downstream re-probes hardware.
package device
