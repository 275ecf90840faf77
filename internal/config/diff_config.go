package config

// DiffConfig defines the size bounds for rendered diff snippets.
type DiffConfig struct {
	MaxDiffLines  int `json:"max_diff_lines,omitempty" yaml:"max_diff_lines,omitempty" validate:"omitempty,min=1"`
	MaxLineLength int `json:"max_line_length,omitempty" yaml:"max_line_length,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultDiffConfig creates default diff configuration
func NewDefaultDiffConfig() DiffConfig {
	return DiffConfig{
		MaxDiffLines:  DefaultDiffMaxLines,
		MaxLineLength: DefaultDiffMaxLineLength,
	}
}
