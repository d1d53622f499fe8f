package common

import (
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

const gib = 1 << 30

// RuntimeProfile is the GC and scheduler setup applied at start.
type RuntimeProfile struct {
	Name     string
	GOGC     int
	MemLimit int64
	MaxProcs int
}

// DetectRuntimeProfile sizes the runtime from the CPU count. Every core is
// scheduled; GOMEMLIMIT caps the heap per host size.
func DetectRuntimeProfile(numCPU int) RuntimeProfile {
	switch {
	case numCPU <= 2:
		return RuntimeProfile{Name: "small", GOGC: 200, MemLimit: 2 * gib, MaxProcs: numCPU}
	case numCPU <= 8:
		return RuntimeProfile{Name: "medium", GOGC: 300, MemLimit: 6 * gib, MaxProcs: numCPU}
	default:
		return RuntimeProfile{Name: "large", GOGC: 400, MemLimit: 12 * gib, MaxProcs: numCPU}
	}
}

// InitRuntime applies the detected profile. GOGC, GOMAXPROCS and GOMEMLIMIT
// set in the environment take precedence.
func InitRuntime() RuntimeProfile {
	p := DetectRuntimeProfile(runtime.NumCPU())

	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(p.GOGC)
	}
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(p.MaxProcs)
	}
	if os.Getenv("GOMEMLIMIT") == "" {
		debug.SetMemoryLimit(p.MemLimit)
	}

	log.Info().
		Str("profile", p.Name).
		Int("num_cpu", runtime.NumCPU()).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Int64("gomemlimit_bytes", debug.SetMemoryLimit(-1)).
		Str("go_version", runtime.Version()).
		Msg("[runtime] settings applied")
	return p
}
