package limiter

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/batemapf/site-differ/internal/config"
)

// ResourceGuard refuses to start a run when the process or the host is
// already saturated. It is consulted once before dispatching checks; the
// run itself is a single bounded pass, so there is no monitoring loop.
type ResourceGuard struct {
	config config.ResourceLimiterConfig
	logger zerolog.Logger
}

// NewResourceGuard creates a ResourceGuard from configuration, filling
// zero-value thresholds with defaults.
func NewResourceGuard(cfg config.ResourceLimiterConfig, logger zerolog.Logger) *ResourceGuard {
	if cfg.MaxMemoryMB == 0 {
		cfg.MaxMemoryMB = 1024
	}
	if cfg.MaxGoroutines == 0 {
		cfg.MaxGoroutines = 10000
	}
	if cfg.SystemMemThresholdPct == 0 {
		cfg.SystemMemThresholdPct = 0.9
	}

	return &ResourceGuard{
		config: cfg,
		logger: logger.With().Str("component", "ResourceGuard").Logger(),
	}
}

// CheckBeforeRun returns an error when a resource limit is already
// exceeded. A disabled guard always passes.
func (rg *ResourceGuard) CheckBeforeRun() error {
	if !rg.config.Enabled {
		return nil
	}

	if err := rg.checkHeapLimit(); err != nil {
		return err
	}
	if err := rg.checkGoroutineLimit(); err != nil {
		return err
	}
	if err := rg.checkSystemMemory(); err != nil {
		return err
	}

	usage := GetResourceUsage()
	rg.logger.Debug().
		Int64("alloc_mb", usage.AllocMB).
		Int("goroutines", usage.Goroutines).
		Float64("system_mem_percent", usage.SystemMemUsedPercent).
		Msg("Resource guard passed")

	return nil
}

// checkHeapLimit checks the process heap against the configured limit.
func (rg *ResourceGuard) checkHeapLimit() error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	currentMB := int64(m.Alloc / 1024 / 1024)
	if currentMB > rg.config.MaxMemoryMB {
		return fmt.Errorf("memory limit exceeded: current %dMB > limit %dMB", currentMB, rg.config.MaxMemoryMB)
	}

	return nil
}

// checkGoroutineLimit checks the goroutine count against the configured
// limit.
func (rg *ResourceGuard) checkGoroutineLimit() error {
	current := runtime.NumGoroutine()
	if current > rg.config.MaxGoroutines {
		return fmt.Errorf("goroutine limit exceeded: current %d > limit %d", current, rg.config.MaxGoroutines)
	}

	return nil
}

// checkSystemMemory checks host memory pressure against the configured
// threshold. A stats read failure is logged and treated as not exceeded;
// the guard is advisory and must not block runs on broken telemetry.
func (rg *ResourceGuard) checkSystemMemory() error {
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		rg.logger.Warn().Err(err).Msg("Failed to read system memory stats")
		return nil
	}

	usedPercent := vmStat.UsedPercent / 100.0
	if usedPercent > rg.config.SystemMemThresholdPct {
		return fmt.Errorf(
			"system memory threshold exceeded: used %.1f%% > threshold %.1f%%",
			vmStat.UsedPercent, rg.config.SystemMemThresholdPct*100,
		)
	}

	return nil
}
