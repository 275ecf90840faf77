package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs check passes on a fixed interval until its context is
// cancelled. The first pass starts immediately; later passes follow the
// ticker. A failed pass is logged and the loop keeps going, so a transient
// problem never stops a long-running process.
type Scheduler struct {
	service  *CheckService
	interval time.Duration
	logger   zerolog.Logger
}

// NewScheduler creates a Scheduler around a CheckService. A non-positive
// interval falls back to one hour.
func NewScheduler(service *CheckService, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		service:  service,
		interval: interval,
		logger:   logger.With().Str("component", "Scheduler").Logger(),
	}
}

// Run blocks until ctx is cancelled, executing one check pass immediately
// and one per interval afterwards. Cancellation is the normal way to stop
// the loop, so Run returns nil on shutdown.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting scheduler")

	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Scheduler stopping")
			return nil
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

func (s *Scheduler) runPass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.service.Run(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Check pass failed")
	}
}
