package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-playground/validator/v10"

	"github.com/batemapf/site-differ/internal/urlhandler"
)

// ValidateConfig performs validation on the GlobalConfig structure. It is
// the only fatal gate in the pipeline: any error here prevents the run
// from starting, since broken configuration affects every URL uniformly.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()
	registerCustomValidations(validate)

	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return formatValidationErrors(errs)
		}
		return fmt.Errorf("configuration validation error: %w", err)
	}

	return validateURLSet(cfg.URLs)
}

func registerCustomValidations(validate *validator.Validate) {
	// Register custom validation for LogLevel
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		level := strings.ToLower(fl.Field().String())
		switch level {
		case "", "debug", "info", "warn", "error", "fatal", "panic": // Allow empty for omitempty
			return true
		default:
			return false
		}
	})

	// Register custom validation for LogFormat
	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		format := strings.ToLower(fl.Field().String())
		switch format {
		case "", "console", "text", "json": // Allow empty for omitempty
			return true
		default:
			return false
		}
	})

	// Register custom validation for lists of regex pattern sources
	_ = validate.RegisterValidation("regexlist", func(fl validator.FieldLevel) bool {
		patterns, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		for _, pattern := range patterns {
			if _, err := regexp.Compile(pattern); err != nil {
				return false
			}
		}
		return true
	})

	// Register custom validation for CSS selectors
	_ = validate.RegisterValidation("cssselector", func(fl validator.FieldLevel) bool {
		selector := fl.Field().String()
		if selector == "" { // Allow empty for omitempty
			return true
		}
		_, err := cascadia.Parse(selector)
		return err == nil
	})
}

// validateURLSet rejects duplicate URL entries. Comparison happens on the
// normalized form so two spellings of one URL cannot share a state record.
func validateURLSet(urls []URLConfig) error {
	seen := make(map[string]struct{}, len(urls))
	for _, uc := range urls {
		normalized, err := urlhandler.NormalizeURL(uc.URL)
		if err != nil {
			return NewValidationError("urls", uc.URL, fmt.Sprintf("invalid URL: %v", err))
		}
		if _, exists := seen[normalized]; exists {
			return NewValidationError("urls", uc.URL, "duplicate URL entry")
		}
		seen[normalized] = struct{}{}
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	var messages []string
	for _, e := range errs {
		fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
		msg := fmt.Sprintf("validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(messages, "\n  "))
}
