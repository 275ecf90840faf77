package models

import "time"

// URLState is the persisted record for a monitored URL: the last known
// content snapshot plus notification and failure bookkeeping. One record
// exists per URL, created on the first successful check.
type URLState struct {
	URL                 string    `json:"url"`
	LastFingerprint     string    `json:"last_fingerprint,omitempty"`
	NormalizedText      string    `json:"normalized_text,omitempty"`
	ETag                string    `json:"etag,omitempty"`
	LastModified        string    `json:"last_modified,omitempty"`
	LastCheckedAt       time.Time `json:"last_checked_at,omitempty"`
	LastChangedAt       time.Time `json:"last_changed_at,omitempty"`
	LastNotifiedAt      time.Time `json:"last_notified_at,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
}

// HasBaseline reports whether the URL has ever completed a successful
// fetch+normalize. A state without a baseline never produces a diff.
func (s *URLState) HasBaseline() bool {
	return s.LastFingerprint != ""
}

// HasValidators reports whether conditional-fetch validators are cached.
func (s *URLState) HasValidators() bool {
	return s.ETag != "" || s.LastModified != ""
}
