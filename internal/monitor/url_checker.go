package monitor

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/batemapf/site-differ/internal/config"
	"github.com/batemapf/site-differ/internal/differ"
	"github.com/batemapf/site-differ/internal/fetcher"
	"github.com/batemapf/site-differ/internal/models"
	"github.com/batemapf/site-differ/internal/normalizer"
	"github.com/batemapf/site-differ/internal/policy"
)

// URLChecker runs the per-URL pipeline: conditional fetch, normalization,
// policy evaluation, and diff rendering for reportable changes. It never
// touches the state store; previous state arrives preloaded and the updated
// state leaves inside the CheckResult.
type URLChecker struct {
	fetcher    *fetcher.Fetcher
	normalizer *normalizer.ContentNormalizer
	differ     *differ.ContentDiffer
	evaluator  *policy.Evaluator
	logger     zerolog.Logger
}

// NewURLChecker creates a URLChecker from its pipeline stages.
func NewURLChecker(
	contentFetcher *fetcher.Fetcher,
	contentNormalizer *normalizer.ContentNormalizer,
	contentDiffer *differ.ContentDiffer,
	evaluator *policy.Evaluator,
	logger zerolog.Logger,
) *URLChecker {
	return &URLChecker{
		fetcher:    contentFetcher,
		normalizer: contentNormalizer,
		differ:     contentDiffer,
		evaluator:  evaluator,
		logger:     logger.With().Str("component", "URLChecker").Logger(),
	}
}

// CheckURL checks a single URL against its previous state. Failures are
// folded into the result, never returned; one URL's outcome must not
// disturb the rest of the run.
func (uc *URLChecker) CheckURL(
	ctx context.Context,
	urlCfg config.URLConfig,
	ignorePatterns []*regexp.Regexp,
	prev models.URLState,
) models.CheckResult {
	now := time.Now().UTC()

	observation := uc.observe(ctx, urlCfg, ignorePatterns, prev)
	decision := uc.evaluator.Evaluate(prev, observation, now)

	result := models.CheckResult{
		URL:                 urlCfg.URL,
		Outcome:             decision.Outcome,
		Reportable:          decision.Reportable,
		Baselined:           decision.Baselined,
		Failing:             decision.Failing,
		PreviousFingerprint: prev.LastFingerprint,
		State:               decision.State,
	}

	if decision.Outcome.IsFailure() {
		result.Error = decision.State.LastError
		uc.logger.Warn().
			Str("url", urlCfg.URL).
			Str("outcome", string(decision.Outcome)).
			Str("error", result.Error).
			Msg("URL check failed")
		return result
	}

	if decision.Reportable {
		result.Diff = uc.differ.Compare(prev.NormalizedText, decision.State.NormalizedText)
		uc.logger.Info().
			Str("url", urlCfg.URL).
			Int("lines_added", result.Diff.LinesAdded).
			Int("lines_removed", result.Diff.LinesRemoved).
			Msg("Change detected")
	} else {
		uc.logger.Debug().
			Str("url", urlCfg.URL).
			Str("outcome", string(decision.Outcome)).
			Bool("baselined", decision.Baselined).
			Msg("URL checked")
	}

	return result
}

// observe runs fetch and normalize, classifying the result for the policy.
func (uc *URLChecker) observe(
	ctx context.Context,
	urlCfg config.URLConfig,
	ignorePatterns []*regexp.Regexp,
	prev models.URLState,
) policy.Observation {
	uc.logger.Debug().
		Str("url", urlCfg.URL).
		Bool("conditional", prev.HasValidators()).
		Msg("Fetching content")

	fetchResult, err := uc.fetcher.Fetch(ctx, fetcher.FetchInput{
		URL:          urlCfg.URL,
		ETag:         prev.ETag,
		LastModified: prev.LastModified,
		UserAgent:    urlCfg.UserAgent,
	})
	if err != nil {
		if errors.Is(err, fetcher.ErrNotModified) {
			return policy.NotModifiedObservation()
		}
		return policy.FetchFailureObservation(err)
	}

	normalizeResult, err := uc.normalizer.Normalize(normalizer.NormalizeInput{
		URL:            urlCfg.URL,
		Body:           fetchResult.Body,
		Selector:       urlCfg.Selector,
		IgnorePatterns: ignorePatterns,
	})
	if err != nil {
		return policy.NormalizeFailureObservation(err)
	}

	return policy.SuccessObservation(
		normalizeResult.Fingerprint,
		normalizeResult.Text,
		fetchResult.ETag,
		fetchResult.LastModified,
	)
}
