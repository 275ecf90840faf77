package config

import (
	"fmt"
	"regexp"
)

// URLConfig describes one monitored URL. Selector optionally scopes
// extraction to the first matching region. IgnorePatterns are regular
// expressions whose matches are replaced with the placeholder before
// fingerprinting, applied in order after the run-wide patterns. UserAgent
// overrides the run-wide default for this URL only.
type URLConfig struct {
	URL            string   `json:"url" yaml:"url" validate:"required,url"`
	Selector       string   `json:"selector,omitempty" yaml:"selector,omitempty" validate:"omitempty,cssselector"`
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" validate:"omitempty,regexlist"`
	UserAgent      string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// CompileIgnorePatterns compiles this URL's patterns in configured order.
func (u URLConfig) CompileIgnorePatterns() ([]*regexp.Regexp, error) {
	return CompilePatterns(u.IgnorePatterns)
}

// CompilePatterns compiles a list of regular expression sources in order.
// An invalid pattern is a configuration error that must abort the run.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, NewValidationError("ignore_patterns", pattern, fmt.Sprintf("invalid regular expression: %v", err))
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
