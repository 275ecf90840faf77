package normalizer

import "fmt"

// SelectorNotFoundError indicates the configured CSS selector matched nothing
// in the fetched document. Callers treat this as a soft per-URL failure.
type SelectorNotFoundError struct {
	URL      string
	Selector string
}

func (e *SelectorNotFoundError) Error() string {
	return fmt.Sprintf("selector '%s' not found in content from '%s'", e.Selector, e.URL)
}

// NewSelectorNotFoundError creates a new SelectorNotFoundError.
func NewSelectorNotFoundError(url, selector string) error {
	return &SelectorNotFoundError{URL: url, Selector: selector}
}
