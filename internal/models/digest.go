package models

import "time"

// ChangeNotice is one reportable content change included in a digest.
type ChangeNotice struct {
	URL                 string     `json:"url"`
	PreviousFingerprint string     `json:"previous_fingerprint"`
	NewFingerprint      string     `json:"new_fingerprint"`
	Diff                DiffResult `json:"diff"`
	CheckedAt           time.Time  `json:"checked_at"`
}

// FailureNotice is one persistently failing URL included in a digest.
type FailureNotice struct {
	URL                 string `json:"url"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastError           string `json:"last_error"`
}

// DigestSummary aggregates per-outcome counts for one run.
type DigestSummary struct {
	Checked   int `json:"checked"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
	Baselined int `json:"baselined"`
	Failed    int `json:"failed"`
}

// Digest is the aggregated report of one full check run: every reportable
// change, every persistently failing URL, and the summary counts.
type Digest struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Changes     []ChangeNotice  `json:"changes,omitempty"`
	Failures    []FailureNotice `json:"failures,omitempty"`
	Summary     DigestSummary   `json:"summary"`
}

// IsEmpty reports whether the digest contains nothing worth delivering.
func (d *Digest) IsEmpty() bool {
	return len(d.Changes) == 0 && len(d.Failures) == 0
}
