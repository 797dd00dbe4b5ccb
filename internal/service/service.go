package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sensor-extremes/internal/archive"
	"sensor-extremes/internal/engine"
	"sensor-extremes/internal/persist"
	"sensor-extremes/internal/scheduler"
	"sensor-extremes/internal/source"
)

// Service wires the reading feed, calendar ticks, and snapshot saves
// into the engine. All triggers funnel into engine methods, which
// serialize on the engine's own mutex.
type Service struct {
	engine   *engine.Engine
	store    *persist.FileStore
	recorder archive.Recorder
	sched    *scheduler.Scheduler
	feed     source.Feed
	logger   zerolog.Logger
}

// New constructs the tracking service. store may be nil when
// persistence is disabled; recorder may be nil when the archive is
// disabled.
func New(eng *engine.Engine, store *persist.FileStore, recorder archive.Recorder, sched *scheduler.Scheduler, feed source.Feed, logger zerolog.Logger) *Service {
	return &Service{
		engine:   eng,
		store:    store,
		recorder: recorder,
		sched:    sched,
		feed:     feed,
		logger:   logger.With().Str("component", "service").Logger(),
	}
}

// Run blocks, pumping readings and clock triggers until ctx is
// cancelled. A final snapshot is saved on shutdown.
func (s *Service) Run(ctx context.Context) error {
	if s.feed == nil {
		return fmt.Errorf("reading feed not configured")
	}
	if s.sched == nil {
		return fmt.Errorf("scheduler not configured")
	}

	var saveJob func()
	if s.store != nil {
		saveJob = s.SaveSnapshot
	}
	if err := s.sched.Register(s.CalendarTick, saveJob); err != nil {
		return err
	}
	s.sched.Start()
	defer s.sched.Stop()

	if s.store != nil {
		defer s.SaveSnapshot()
	}

	return s.feed.Run(ctx, s.HandleReading)
}

// HandleReading ingests one raw reading and archives it when accepted.
func (s *Service) HandleReading(_ context.Context, r source.Reading) {
	value, ok := s.engine.Ingest(r.SourceID, r.Raw, r.At)
	if !ok {
		return
	}

	if s.recorder != nil {
		err := s.recorder.RecordSample(archive.Sample{SourceID: r.SourceID, Value: value, At: r.At})
		if err != nil {
			s.logger.Error().Err(err).Str("source", r.SourceID).Msg("failed to archive sample")
		}
	}
}

// CalendarTick closes out period instances. Missed ticks are safe:
// ingestion self-heals stale ledgers.
func (s *Service) CalendarTick() {
	now := time.Now()
	s.engine.RolloverCheck(now)
	s.logger.Debug().Time("tick", now).Msg("calendar tick processed")
}

// SaveSnapshot persists the current ledgers. A failure leaves the
// in-memory state untouched; the next scheduled save retries.
func (s *Service) SaveSnapshot() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.engine.ExportLedgers()); err != nil {
		s.logger.Error().Err(err).Str("path", s.store.Path()).Msg("failed to save state snapshot")
		return
	}
	s.logger.Debug().Str("path", s.store.Path()).Msg("state snapshot saved")
}
