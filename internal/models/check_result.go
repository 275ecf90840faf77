package models

// CheckOutcome classifies the result of checking one URL.
type CheckOutcome string

const (
	OutcomeUnchanged       CheckOutcome = "UNCHANGED"
	OutcomeChanged         CheckOutcome = "CHANGED"
	OutcomeFetchFailed     CheckOutcome = "FETCH_FAILED"
	OutcomeNormalizeFailed CheckOutcome = "NORMALIZE_FAILED"
)

// IsFailure reports whether the outcome counts against the URL's
// consecutive-failure counter.
func (o CheckOutcome) IsFailure() bool {
	return o == OutcomeFetchFailed || o == OutcomeNormalizeFailed
}

// CheckResult is the transient product of checking one URL in one run.
// It exists only until the digest is assembled.
type CheckResult struct {
	URL                 string
	Outcome             CheckOutcome
	Reportable          bool        // change passed the notification policy
	Baselined           bool        // this check established the first fingerprint
	Failing             bool        // consecutive failures reached the threshold
	PreviousFingerprint string      // fingerprint before this check, if any
	Diff                *DiffResult // set iff Outcome is Changed and Reportable
	Error               string      // set iff Outcome is a failure
	State               URLState    // updated state to persist
}
