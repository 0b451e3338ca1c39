package device

import (
	"runtime"
	"strings"

	sysinfo "github.com/elastic/go-sysinfo"
	"github.com/jaypipes/ghw"
)

// HostInfo describes the host machine as seen by the capability detector.
type HostInfo struct {
	// Architecture is the machine architecture string, e.g. "amd64",
	// "arm64", or "aarch64" depending on the source.
	Architecture string

	// Processor is the CPU brand string, e.g. "Apple M2" or
	// "Intel(R) Xeon(R) CPU". Empty when introspection is unavailable.
	Processor string

	// NumCPU is the number of logical CPUs.
	NumCPU int
}

// CurrentHost gathers host information for the running process.
//
// The architecture comes from the OS when go-sysinfo can report it (that
// yields kernel-level strings like "aarch64"), falling back to
// runtime.GOARCH. The processor brand string comes from ghw; failures leave
// it empty, which simply disables processor-string ARM matching.
func CurrentHost() HostInfo {
	host := HostInfo{
		Architecture: runtime.GOARCH,
		NumCPU:       runtime.NumCPU(),
	}

	if h, err := sysinfo.Host(); err == nil {
		if arch := h.Info().Architecture; arch != "" {
			host.Architecture = strings.ToLower(arch)
		}
	}

	if cpu, err := ghw.CPU(); err == nil && len(cpu.Processors) > 0 {
		host.Processor = cpu.Processors[0].Model
	}

	return host
}
