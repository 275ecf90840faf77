package notifier

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/batemapf/site-differ/internal/models"
)

// MultiNotifier fans a digest out to every configured delivery target. A
// failing target never blocks the others; each failure is logged and the
// joined error is returned so the caller can record the outcome.
type MultiNotifier struct {
	targets []models.Notifier
	logger  zerolog.Logger
}

// NewMultiNotifier creates a MultiNotifier over the given targets.
func NewMultiNotifier(logger zerolog.Logger, targets ...models.Notifier) *MultiNotifier {
	return &MultiNotifier{
		targets: targets,
		logger:  logger.With().Str("component", "MultiNotifier").Logger(),
	}
}

// Notify delivers the digest to every target.
func (mn *MultiNotifier) Notify(ctx context.Context, digest models.Digest) error {
	var errs []error
	for _, target := range mn.targets {
		if err := target.Notify(ctx, digest); err != nil {
			mn.logger.Error().Err(err).Msg("Digest delivery failed")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
