package config

// ResourceLimiterConfig defines the pre-run resource guard thresholds.
// The guard refuses to start a run when the system is already saturated.
type ResourceLimiterConfig struct {
	Enabled               bool    `json:"enabled" yaml:"enabled"`
	MaxMemoryMB           int64   `json:"max_memory_mb,omitempty" yaml:"max_memory_mb,omitempty" validate:"omitempty,min=1"`
	SystemMemThresholdPct float64 `json:"system_mem_threshold_pct,omitempty" yaml:"system_mem_threshold_pct,omitempty" validate:"omitempty,gt=0,lte=1"`
	MaxGoroutines         int     `json:"max_goroutines,omitempty" yaml:"max_goroutines,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultResourceLimiterConfig creates default resource limiter configuration
func NewDefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		Enabled:               true,
		MaxMemoryMB:           1024,
		SystemMemThresholdPct: 0.9,
		MaxGoroutines:         10000,
	}
}
