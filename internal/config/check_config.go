package config

import "time"

// CheckConfig defines configuration for the check run: notification policy
// parameters and the orchestrator's concurrency and time budget.
type CheckConfig struct {
	CooldownMinutes     int    `json:"cooldown_minutes,omitempty" yaml:"cooldown_minutes,omitempty" validate:"omitempty,min=0"`
	FailureThreshold    int    `json:"failure_threshold,omitempty" yaml:"failure_threshold,omitempty" validate:"omitempty,min=1"`
	MaxConcurrentChecks int    `json:"max_concurrent_checks,omitempty" yaml:"max_concurrent_checks,omitempty" validate:"omitempty,min=1"`
	RunTimeoutSeconds   int    `json:"run_timeout_seconds,omitempty" yaml:"run_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	UserAgent           string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// NewDefaultCheckConfig creates default check configuration
func NewDefaultCheckConfig() CheckConfig {
	return CheckConfig{
		CooldownMinutes:     DefaultCheckCooldownMinutes,
		FailureThreshold:    DefaultCheckFailureThreshold,
		MaxConcurrentChecks: DefaultCheckMaxConcurrent,
		RunTimeoutSeconds:   DefaultCheckRunTimeoutSeconds,
		UserAgent:           DefaultCheckUserAgent,
	}
}

// Cooldown returns the notification cooldown as a duration. Zero means
// every detected change is reportable.
func (c CheckConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// RunTimeout returns the hard wall-clock budget for one full run.
func (c CheckConfig) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}
