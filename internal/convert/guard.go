package convert

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sys/unix"

	"framed/internal/config"
)

// Seams for tests.
var (
	loadAverage   = load.AvgWithContext
	virtualMemory = mem.VirtualMemoryWithContext
	statfs        = unix.Statfs
	numCPU        = runtime.NumCPU
)

// Guard decides whether the machine has headroom to start another
// conversion. Playback shares the box, so the worker declines to start work
// rather than queueing it when load, memory, or disk are tight.
type Guard struct {
	settings config.Conversion
	dir      string
}

// NewGuard constructs a guard for the directory conversions write into.
func NewGuard(settings config.Conversion, dir string) *Guard {
	return &Guard{settings: settings, dir: dir}
}

// Check returns nil when a new conversion may start. A non-nil error names
// the exhausted resource.
func (g *Guard) Check(ctx context.Context) error {
	if max := g.settings.MaxLoadPerCore; max > 0 {
		avg, err := loadAverage(ctx)
		if err == nil {
			ceiling := max * float64(numCPU())
			if avg.Load1 > ceiling {
				return fmt.Errorf("load average %.2f above ceiling %.2f", avg.Load1, ceiling)
			}
		}
	}
	if min := g.settings.MinAvailableMemoryMB; min > 0 {
		vm, err := virtualMemory(ctx)
		if err == nil {
			availableMB := vm.Available / (1 << 20)
			if availableMB < uint64(min) {
				return fmt.Errorf("available memory %d MB below floor %d MB", availableMB, min)
			}
		}
	}
	if min := g.settings.MinFreeSpaceMB; min > 0 {
		var stat unix.Statfs_t
		if err := statfs(g.dir, &stat); err == nil {
			freeMB := stat.Bavail * uint64(stat.Bsize) / (1 << 20)
			if freeMB < uint64(min) {
				return fmt.Errorf("free space %d MB below floor %d MB", freeMB, min)
			}
		}
	}
	return nil
}
