package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Options hold the cron specs for the engine's two clock-driven
// triggers. Specs use the six-field form with seconds.
type Options struct {
	// RolloverSpec fires the calendar tick, nominally midnight local time.
	RolloverSpec string
	// SaveSpec fires the periodic snapshot save, nominally hourly.
	SaveSpec string
}

// Scheduler drives calendar rollover ticks and snapshot saves.
type Scheduler struct {
	cron   *cron.Cron
	opts   Options
	logger zerolog.Logger
}

// New constructs a scheduler.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.RolloverSpec == "" {
		opts.RolloverSpec = "0 0 0 * * *"
	}
	if opts.SaveSpec == "" {
		opts.SaveSpec = "0 0 * * * *"
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		opts:   opts,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Register installs the rollover tick and, when save is non-nil, the
// snapshot save job.
func (s *Scheduler) Register(rollover func(), save func()) error {
	if _, err := s.cron.AddFunc(s.opts.RolloverSpec, rollover); err != nil {
		return fmt.Errorf("register rollover tick: %w", err)
	}
	if save != nil {
		if _, err := s.cron.AddFunc(s.opts.SaveSpec, save); err != nil {
			return fmt.Errorf("register snapshot save: %w", err)
		}
	}
	return nil
}

// Start begins dispatching jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Str("rollover", s.opts.RolloverSpec).Str("save", s.opts.SaveSpec).Msg("scheduler started")
}

// Stop stops the scheduler, waiting for any running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("scheduler stopped")
}
