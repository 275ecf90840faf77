package normalizer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/batemapf/site-differ/internal/config"
)

// ContentNormalizer reduces fetched content to canonical text so that
// fingerprints and diffs ignore markup noise and volatile fragments.
type ContentNormalizer struct {
	globalPatterns []*regexp.Regexp
	placeholder    string
	logger         zerolog.Logger
}

// NewContentNormalizer creates a ContentNormalizer from normalizer configuration.
// Global ignore patterns are compiled once here.
func NewContentNormalizer(cfg config.NormalizerConfig, logger zerolog.Logger) (*ContentNormalizer, error) {
	patterns, err := config.CompilePatterns(cfg.IgnorePatterns)
	if err != nil {
		return nil, err
	}

	placeholder := cfg.Placeholder
	if placeholder == "" {
		placeholder = config.DefaultNormalizerPlaceholder
	}

	return &ContentNormalizer{
		globalPatterns: patterns,
		placeholder:    placeholder,
		logger:         logger.With().Str("component", "ContentNormalizer").Logger(),
	}, nil
}

// NormalizeInput holds parameters for a single normalization.
type NormalizeInput struct {
	URL            string
	Body           []byte
	Selector       string
	IgnorePatterns []*regexp.Regexp
}

// NormalizeResult holds the canonical text and its fingerprint.
type NormalizeResult struct {
	Text        string
	Fingerprint string
}

// Normalize parses the body as HTML, optionally scopes it to the first match
// of the configured CSS selector, strips non-content tags, canonicalizes the
// text lines and applies ignore patterns. Plain text bodies pass through the
// same line pipeline since the HTML parser is tolerant of non-markup input.
func (cn *ContentNormalizer) Normalize(input NormalizeInput) (*NormalizeResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse content from '%s': %w", input.URL, err)
	}

	root := doc.Selection
	if input.Selector != "" {
		matches := doc.Find(input.Selector)
		if matches.Length() == 0 {
			cn.logger.Warn().
				Str("url", input.URL).
				Str("selector", input.Selector).
				Msg("Selector matched no elements")
			return nil, NewSelectorNotFoundError(input.URL, input.Selector)
		}
		root = matches.First()
	}

	root.Find("script, style, noscript").Remove()

	text := cn.canonicalizeLines(root.Text())
	text = cn.applyIgnorePatterns(text, input.IgnorePatterns)

	result := &NormalizeResult{
		Text:        text,
		Fingerprint: Fingerprint(text),
	}

	cn.logger.Debug().
		Str("url", input.URL).
		Int("content_size", len(input.Body)).
		Int("canonical_size", len(text)).
		Str("fingerprint", result.Fingerprint).
		Msg("Normalized content")

	return result, nil
}

// canonicalizeLines trims every line, drops empty ones and rejoins with "\n".
func (cn *ContentNormalizer) canonicalizeLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

// applyIgnorePatterns replaces every match of the global patterns, then the
// per-URL patterns, with the configured placeholder. Order is the configured
// order so overlapping patterns behave deterministically.
func (cn *ContentNormalizer) applyIgnorePatterns(text string, urlPatterns []*regexp.Regexp) string {
	for _, re := range cn.globalPatterns {
		text = re.ReplaceAllLiteralString(text, cn.placeholder)
	}
	for _, re := range urlPatterns {
		text = re.ReplaceAllLiteralString(text, cn.placeholder)
	}
	return text
}

// Fingerprint returns the SHA-256 hex digest of canonical text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
