package monitor

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/batemapf/site-differ/internal/config"
	"github.com/batemapf/site-differ/internal/limiter"
	"github.com/batemapf/site-differ/internal/models"
)

// CheckService orchestrates one full check pass: it preloads state for
// every configured URL, fans the checks out to a bounded worker pool,
// persists the updated states sequentially, and assembles and delivers the
// digest. One invocation is one pass; scheduling lives with the caller.
type CheckService struct {
	cfg      *config.GlobalConfig
	checker  *URLChecker
	store    models.StateStore
	notifier models.Notifier
	guard    *limiter.ResourceGuard
	logger   zerolog.Logger
}

// NewCheckService creates a CheckService from its collaborators.
func NewCheckService(
	gCfg *config.GlobalConfig,
	checker *URLChecker,
	store models.StateStore,
	digestNotifier models.Notifier,
	guard *limiter.ResourceGuard,
	logger zerolog.Logger,
) *CheckService {
	return &CheckService{
		cfg:      gCfg,
		checker:  checker,
		store:    store,
		notifier: digestNotifier,
		guard:    guard,
		logger:   logger.With().Str("component", "CheckService").Logger(),
	}
}

// Run executes one check pass over every configured URL and returns the
// digest it assembled. Per-URL failures are folded into the digest; the
// returned error covers only conditions that prevent the pass itself
// (resource pressure, broken configuration, unreadable state).
func (cs *CheckService) Run(ctx context.Context) (models.Digest, error) {
	startedAt := time.Now()

	if err := cs.guard.CheckBeforeRun(); err != nil {
		return models.Digest{}, fmt.Errorf("resource guard refused the run: %w", err)
	}

	urls := cs.cfg.URLs
	if len(urls) == 0 {
		cs.logger.Warn().Msg("No URLs configured, nothing to check")
		return models.Digest{GeneratedAt: time.Now().UTC()}, nil
	}

	ignorePatterns, err := cs.compileIgnorePatterns(urls)
	if err != nil {
		return models.Digest{}, err
	}

	prevStates, err := cs.preloadStates(ctx, urls)
	if err != nil {
		return models.Digest{}, err
	}

	concurrency := cs.cfg.CheckConfig.MaxConcurrentChecks
	if concurrency <= 0 {
		concurrency = config.DefaultCheckMaxConcurrent
	}

	cs.logger.Info().
		Int("url_count", len(urls)).
		Int("concurrency", concurrency).
		Dur("timeout", cs.cfg.CheckConfig.RunTimeout()).
		Msg("Starting check run")

	results := cs.runChecks(ctx, urls, ignorePatterns, prevStates, concurrency)

	cs.persistStates(ctx, results)

	digest := cs.buildDigest(results)
	cs.deliverDigest(ctx, digest)

	cs.logger.Info().
		Int("checked", digest.Summary.Checked).
		Int("changed", digest.Summary.Changed).
		Int("unchanged", digest.Summary.Unchanged).
		Int("baselined", digest.Summary.Baselined).
		Int("failed", digest.Summary.Failed).
		Dur("duration", time.Since(startedAt)).
		Msg("Check run completed")

	return digest, nil
}

// compileIgnorePatterns compiles every URL's patterns up front so workers
// stay free of configuration errors. Patterns were validated at load time;
// a failure here still aborts the run rather than checking with broken
// ignore rules.
func (cs *CheckService) compileIgnorePatterns(urls []config.URLConfig) ([][]*regexp.Regexp, error) {
	patterns := make([][]*regexp.Regexp, len(urls))
	for i, urlCfg := range urls {
		compiled, err := urlCfg.CompileIgnorePatterns()
		if err != nil {
			return nil, fmt.Errorf("failed to compile ignore patterns for '%s': %w", urlCfg.URL, err)
		}
		patterns[i] = compiled
	}
	return patterns, nil
}

// preloadStates reads every URL's state before dispatch so workers never
// hold the store connection while suspended on a remote fetch.
func (cs *CheckService) preloadStates(ctx context.Context, urls []config.URLConfig) ([]models.URLState, error) {
	states := make([]models.URLState, len(urls))
	for i, urlCfg := range urls {
		state, _, err := cs.store.Get(ctx, urlCfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to load state for '%s': %w", urlCfg.URL, err)
		}
		states[i] = state
	}
	return states, nil
}

// runChecks fans the URL checks out to a bounded worker pool. Results land
// in a preallocated slice by index, so digest order follows configuration
// order regardless of completion order. Checks cut off by the run timeout
// surface as fetch failures for this run.
func (cs *CheckService) runChecks(
	ctx context.Context,
	urls []config.URLConfig,
	ignorePatterns [][]*regexp.Regexp,
	prevStates []models.URLState,
	concurrency int,
) []models.CheckResult {
	runCtx := ctx
	if timeout := cs.cfg.CheckConfig.RunTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	results := make([]models.CheckResult, len(urls))

	g, workerCtx := errgroup.WithContext(runCtx)
	g.SetLimit(concurrency)

	for i, urlCfg := range urls {
		g.Go(func() error {
			results[i] = cs.checker.CheckURL(workerCtx, urlCfg, ignorePatterns[i], prevStates[i])
			// Worker errors are already folded into the result; returning
			// one would cancel the sibling checks.
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// persistStates writes every updated state back to the store. The parent
// context is used deliberately; a run timeout abandons in-flight fetches,
// not the bookkeeping for results already in hand. A failed put leaves that
// URL's previous state in place, which at worst repeats one notification
// next run.
func (cs *CheckService) persistStates(ctx context.Context, results []models.CheckResult) {
	for i := range results {
		if err := cs.store.Put(ctx, results[i].State); err != nil {
			cs.logger.Error().
				Err(err).
				Str("url", results[i].URL).
				Msg("Failed to persist URL state")
		}
	}
}

// buildDigest assembles the run digest from the per-URL results, in
// configuration order.
func (cs *CheckService) buildDigest(results []models.CheckResult) models.Digest {
	digest := models.Digest{GeneratedAt: time.Now().UTC()}

	for i := range results {
		result := &results[i]
		digest.Summary.Checked++

		switch {
		case result.Baselined:
			digest.Summary.Baselined++
		case result.Outcome == models.OutcomeChanged:
			digest.Summary.Changed++
		case result.Outcome == models.OutcomeUnchanged:
			digest.Summary.Unchanged++
		default:
			digest.Summary.Failed++
		}

		if result.Reportable && result.Diff != nil {
			digest.Changes = append(digest.Changes, models.ChangeNotice{
				URL:                 result.URL,
				PreviousFingerprint: result.PreviousFingerprint,
				NewFingerprint:      result.State.LastFingerprint,
				Diff:                *result.Diff,
				CheckedAt:           result.State.LastCheckedAt,
			})
		}

		if result.Failing && cs.cfg.NotificationConfig.NotifyOnFailure {
			digest.Failures = append(digest.Failures, models.FailureNotice{
				URL:                 result.URL,
				ConsecutiveFailures: result.State.ConsecutiveFailures,
				LastError:           result.State.LastError,
			})
		}
	}

	return digest
}

// deliverDigest hands the digest to the notifier. Delivery failures are
// logged and swallowed; states are already persisted and a lost digest must
// not fail the run.
func (cs *CheckService) deliverDigest(ctx context.Context, digest models.Digest) {
	if digest.IsEmpty() {
		cs.logger.Info().Msg("No changes detected")
		return
	}

	if err := cs.notifier.Notify(ctx, digest); err != nil {
		cs.logger.Error().Err(err).Msg("Failed to deliver digest")
	}
}
