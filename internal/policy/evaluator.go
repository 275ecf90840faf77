package policy

import (
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/batemapf/site-differ/internal/config"
	"github.com/batemapf/site-differ/internal/models"
)

// maxErrorDetailLength caps the failure detail persisted in URLState so a
// single oversized error string cannot bloat the state record.
const maxErrorDetailLength = 500

// ObservationKind identifies what the fetch and normalize stages produced
// for one URL in one run.
type ObservationKind int

const (
	// ObservationSuccess means a full fetch and normalization completed.
	ObservationSuccess ObservationKind = iota
	// ObservationNotModified means the origin confirmed the cached snapshot
	// through a conditional response.
	ObservationNotModified
	// ObservationFetchFailed means the fetch stage failed.
	ObservationFetchFailed
	// ObservationNormalizeFailed means normalization failed after a
	// successful fetch.
	ObservationNormalizeFailed
)

// Observation is the policy input describing what this run observed for a
// URL. Fingerprint and Text are set only on ObservationSuccess; Err only on
// the failure kinds.
type Observation struct {
	Kind         ObservationKind
	Fingerprint  string
	Text         string
	ETag         string
	LastModified string
	Err          error
}

// SuccessObservation describes a completed fetch and normalization.
func SuccessObservation(fingerprint, text, etag, lastModified string) Observation {
	return Observation{
		Kind:         ObservationSuccess,
		Fingerprint:  fingerprint,
		Text:         text,
		ETag:         etag,
		LastModified: lastModified,
	}
}

// NotModifiedObservation describes a conditional response confirming the
// cached snapshot is still current.
func NotModifiedObservation() Observation {
	return Observation{Kind: ObservationNotModified}
}

// FetchFailureObservation describes a failed fetch.
func FetchFailureObservation(err error) Observation {
	return Observation{Kind: ObservationFetchFailed, Err: err}
}

// NormalizeFailureObservation describes failed normalization.
func NormalizeFailureObservation(err error) Observation {
	return Observation{Kind: ObservationNormalizeFailed, Err: err}
}

// Decision is the policy output: the check's classification and the fully
// updated state to persist.
type Decision struct {
	Outcome    models.CheckOutcome
	Reportable bool
	Baselined  bool
	Failing    bool
	State      models.URLState
}

// Evaluator applies the notification policy, turning the previous state and
// the current observation into a Decision. It never performs I/O; the clock
// arrives as an argument so transitions stay deterministic.
type Evaluator struct {
	cooldown         time.Duration
	failureThreshold int
	logger           zerolog.Logger
}

// NewEvaluator creates an Evaluator from check configuration.
func NewEvaluator(cfg config.CheckConfig, logger zerolog.Logger) *Evaluator {
	threshold := cfg.FailureThreshold
	if threshold <= 0 {
		threshold = config.DefaultCheckFailureThreshold
	}

	return &Evaluator{
		cooldown:         cfg.Cooldown(),
		failureThreshold: threshold,
		logger:           logger.With().Str("component", "PolicyEvaluator").Logger(),
	}
}

// Evaluate classifies one check and produces the updated state. Every arm
// touches last_checked_at; only the failure arms advance the failure
// counter, and only a reportable change advances last_notified_at.
func (e *Evaluator) Evaluate(prev models.URLState, obs Observation, now time.Time) Decision {
	next := prev
	next.LastCheckedAt = now

	switch obs.Kind {
	case ObservationFetchFailed:
		return e.failureDecision(next, models.OutcomeFetchFailed, obs.Err)
	case ObservationNormalizeFailed:
		return e.failureDecision(next, models.OutcomeNormalizeFailed, obs.Err)
	case ObservationNotModified:
		// The origin vouched for the cached snapshot, so this counts as a
		// successful check.
		next.ConsecutiveFailures = 0
		next.LastError = ""
		return Decision{Outcome: models.OutcomeUnchanged, State: next}
	}

	next.ConsecutiveFailures = 0
	next.LastError = ""

	// Validators the response omitted stay as they were; a stale validator
	// can only cost an extra full fetch, never a missed change.
	if obs.ETag != "" {
		next.ETag = obs.ETag
	}
	if obs.LastModified != "" {
		next.LastModified = obs.LastModified
	}

	if !prev.HasBaseline() {
		next.LastFingerprint = obs.Fingerprint
		next.NormalizedText = obs.Text
		next.LastChangedAt = now
		e.logger.Info().Str("url", prev.URL).Msg("Baseline established")
		return Decision{Outcome: models.OutcomeChanged, Baselined: true, State: next}
	}

	if prev.LastFingerprint == obs.Fingerprint {
		return Decision{Outcome: models.OutcomeUnchanged, State: next}
	}

	next.LastFingerprint = obs.Fingerprint
	next.NormalizedText = obs.Text
	next.LastChangedAt = now

	if e.withinCooldown(prev.LastNotifiedAt, now) {
		// The change is absorbed into state but kept out of the digest, so
		// drift during the cooldown window cannot re-alert.
		e.logger.Info().
			Str("url", prev.URL).
			Time("last_notified_at", prev.LastNotifiedAt).
			Msg("Change suppressed by notification cooldown")
		return Decision{Outcome: models.OutcomeChanged, State: next}
	}

	next.LastNotifiedAt = now
	return Decision{Outcome: models.OutcomeChanged, Reportable: true, State: next}
}

// withinCooldown reports whether a prior notification is recent enough to
// suppress a new one. A zero cooldown never suppresses.
func (e *Evaluator) withinCooldown(lastNotified, now time.Time) bool {
	if e.cooldown <= 0 || lastNotified.IsZero() {
		return false
	}
	return now.Sub(lastNotified) < e.cooldown
}

func (e *Evaluator) failureDecision(next models.URLState, outcome models.CheckOutcome, cause error) Decision {
	next.ConsecutiveFailures++
	next.LastError = truncateErrorDetail(cause)

	failing := next.ConsecutiveFailures >= e.failureThreshold
	if failing {
		e.logger.Warn().
			Str("url", next.URL).
			Int("consecutive_failures", next.ConsecutiveFailures).
			Str("last_error", next.LastError).
			Msg("URL is persistently failing")
	}

	return Decision{Outcome: outcome, Failing: failing, State: next}
}

// truncateErrorDetail renders the cause for storage, cutting at a rune
// boundary when the cap lands inside a multi-byte character.
func truncateErrorDetail(err error) string {
	if err == nil {
		return ""
	}

	detail := err.Error()
	if len(detail) <= maxErrorDetailLength {
		return detail
	}

	cut := maxErrorDetailLength
	for cut > 0 && !utf8.RuneStart(detail[cut]) {
		cut--
	}
	return detail[:cut]
}
