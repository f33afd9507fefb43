// Package metrics samples process-level figures for the stats snapshot.
package metrics

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Sampler reads process memory and uptime. Construction captures the start
// instant; uptime is measured from there rather than from the OS so tests
// get deterministic small values.
type Sampler struct {
	started time.Time
	proc    *process.Process
}

// NewSampler creates a Sampler for the current process.
func NewSampler() *Sampler {
	s := &Sampler{started: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		s.proc = p
	}
	return s
}

// Uptime returns the time since the sampler was created.
func (s *Sampler) Uptime() time.Duration {
	return time.Since(s.started)
}

// MemoryMB returns the process resident set size in megabytes. When the
// platform reader is unavailable it falls back to the Go heap figure, which
// undercounts but never fails.
func (s *Sampler) MemoryMB(ctx context.Context) uint64 {
	if s.proc != nil {
		if info, err := s.proc.MemoryInfoWithContext(ctx); err == nil && info != nil {
			return info.RSS / 1024 / 1024
		}
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Alloc / 1024 / 1024
}
