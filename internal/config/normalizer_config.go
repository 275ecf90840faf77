package config

// NormalizerConfig defines configuration for content normalization.
// IgnorePatterns apply to every URL and run before any per-URL patterns.
type NormalizerConfig struct {
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" validate:"omitempty,regexlist"`
	Placeholder    string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// NewDefaultNormalizerConfig creates default normalizer configuration
func NewDefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		IgnorePatterns: []string{},
		Placeholder:    DefaultNormalizerPlaceholder,
	}
}
