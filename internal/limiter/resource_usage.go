package limiter

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceUsage is a point-in-time snapshot of process and host resource
// consumption, used for guard logging and run summaries.
type ResourceUsage struct {
	AllocMB              int64   // Heap currently allocated by the process
	SysMB                int64   // Memory obtained from the OS by the Go runtime
	Goroutines           int     // Number of live goroutines
	GCCount              int64   // Completed GC cycles
	SystemMemUsedMB      int64   // Host memory in use (MB)
	SystemMemTotalMB     int64   // Total host memory (MB)
	SystemMemUsedPercent float64 // Host memory in use (percent)
	CPUUsagePercent      float64 // Host CPU usage (percent)
}

// GetResourceUsage returns current resource usage statistics. Host stats
// that cannot be read are left at zero.
func GetResourceUsage() ResourceUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usage := ResourceUsage{
		AllocMB:    int64(m.Alloc / 1024 / 1024),
		SysMB:      int64(m.Sys / 1024 / 1024),
		Goroutines: runtime.NumGoroutine(),
		GCCount:    int64(m.NumGC),
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemUsedMB = int64(vmStat.Used / 1024 / 1024)
		usage.SystemMemTotalMB = int64(vmStat.Total / 1024 / 1024)
		usage.SystemMemUsedPercent = vmStat.UsedPercent
	}

	if cpuPercents, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercents) > 0 {
		usage.CPUUsagePercent = cpuPercents[0]
	}

	return usage
}
