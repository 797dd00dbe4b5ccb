package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sensor-extremes/internal/persist"
)

// SourceSpec describes one tracked numeric feed. Specs are fixed at
// engine construction time.
type SourceSpec struct {
	ID              string
	Name            string
	Unit            string
	DecimalPlaces   int32
	AveragingWindow time.Duration
}

// sourceState bundles everything the engine tracks for one source:
// period ledgers, the all-time ledger, the rolling window, and the
// derived averages. It is only touched under the engine mutex.
type sourceState struct {
	spec       SourceSpec
	periods    map[Period]*PeriodLedger
	allTime    AllTimeLedger
	window     *rollingWindow
	current    *float64
	periodAvgs map[Period]*float64
}

// Engine owns all per-source tracking state. One mutex serializes
// ingestion, calendar ticks, and snapshot export so a sample's
// ledger/window/average updates apply as a unit.
type Engine struct {
	mu      sync.Mutex
	sources map[string]*sourceState
	order   []string
	logger  zerolog.Logger
}

// New constructs an engine with freshly initialized state for each
// configured source.
func New(specs []SourceSpec, logger zerolog.Logger) *Engine {
	e := &Engine{
		sources: make(map[string]*sourceState, len(specs)),
		order:   make([]string, 0, len(specs)),
		logger:  logger.With().Str("component", "engine").Logger(),
	}
	for _, spec := range specs {
		state := &sourceState{
			spec:       spec,
			periods:    make(map[Period]*PeriodLedger, len(Periods)),
			window:     newRollingWindow(spec.AveragingWindow),
			periodAvgs: make(map[Period]*float64, len(Periods)),
		}
		for _, p := range Periods {
			state.periods[p] = &PeriodLedger{}
		}
		e.sources[spec.ID] = state
		e.order = append(e.order, spec.ID)
	}
	return e
}

// Ingest normalizes one raw reading and applies it to the source's
// ledgers and rolling window. It never fails: sentinel states,
// unparseable values, and unconfigured sources are dropped. The
// normalized value is returned when the reading was accepted.
func (e *Engine) Ingest(sourceID, raw string, now time.Time) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sources[sourceID]
	if !ok {
		e.logger.Warn().Str("source", sourceID).Msg("reading for unconfigured source dropped")
		return 0, false
	}
	if isSentinel(raw) {
		return 0, false
	}
	value, err := normalize(raw, state.spec.DecimalPlaces)
	if err != nil {
		e.logger.Warn().Err(err).Str("source", sourceID).Msg("invalid reading dropped")
		return 0, false
	}

	for _, p := range Periods {
		ledger := state.periods[p]
		if !ledger.Current(p, now) {
			ledger.Reset(now)
			e.logger.Debug().Str("source", sourceID).Str("period", string(p)).Msg("period rolled over")
		}
		ledger.Observe(value, now)
	}
	state.allTime.Observe(value, now)

	state.window.push(value, now)
	state.deriveAverages()
	return value, true
}

// RolloverCheck closes out period instances on a calendar tick,
// independent of sample arrival. The day ledger resets on every tick;
// week, month, and year reset only when the tick lands on the first
// day of a new instance. Ticks may be delayed or missed: Ingest
// self-heals stale ledgers through its membership tests.
func (e *Engine) RolloverCheck(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.order {
		state := e.sources[id]
		for _, p := range Periods {
			if !p.tickDue(now) {
				continue
			}
			state.periods[p].Reset(now)
			state.periodAvgs[p] = nil
			e.logger.Info().Str("source", id).Str("period", string(p)).Msg("period closed by calendar tick")
		}
	}
}

// deriveAverages recomputes the rolling mean and the period midpoint
// averages. A period average exists only while both extremes do.
func (s *sourceState) deriveAverages() {
	if mean, ok := s.window.average(); ok {
		rounded := roundTo(mean, s.spec.DecimalPlaces)
		s.current = &rounded
	} else {
		s.current = nil
	}

	for _, p := range Periods {
		ledger := s.periods[p]
		if ledger.High.Value == nil || ledger.Low.Value == nil {
			s.periodAvgs[p] = nil
			continue
		}
		mid := roundTo((*ledger.High.Value+*ledger.Low.Value)/2, s.spec.DecimalPlaces)
		s.periodAvgs[p] = &mid
	}
}

// ExportLedgers snapshots every source's ledgers into the persistence
// document. The rolling window and derived averages are deliberately
// excluded; they rebuild from live samples after a restart.
func (e *Engine) ExportLedgers() persist.Document {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := persist.Document{Extremes: make(map[string]persist.SourceLedgers, len(e.sources))}
	for _, id := range e.order {
		state := e.sources[id]
		ledgers := make(persist.SourceLedgers, len(Periods)+1)
		for _, p := range Periods {
			ledger := state.periods[p]
			ledgers[string(p)] = persist.Entry{
				High:      persist.Extreme{Value: ledger.High.Value, Timestamp: ledger.High.Timestamp},
				Low:       persist.Extreme{Value: ledger.Low.Value, Timestamp: ledger.Low.Timestamp},
				LastReset: ledger.LastReset,
			}
		}
		ledgers[persist.KeyAllTime] = persist.Entry{
			High: persist.Extreme{Value: state.allTime.High.Value, Timestamp: state.allTime.High.Timestamp},
			Low:  persist.Extreme{Value: state.allTime.Low.Value, Timestamp: state.allTime.Low.Timestamp},
		}
		doc.Extremes[id] = ledgers
	}
	return doc
}

// ImportLedgers restores ledgers from a persisted document. Entries
// for unconfigured sources are ignored; missing sources or periods
// stay freshly initialized.
func (e *Engine) ImportLedgers(doc persist.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, ledgers := range doc.Extremes {
		state, ok := e.sources[id]
		if !ok {
			e.logger.Debug().Str("source", id).Msg("persisted ledgers for unconfigured source ignored")
			continue
		}
		for _, p := range Periods {
			entry, ok := ledgers[string(p)]
			if !ok {
				continue
			}
			ledger := state.periods[p]
			ledger.High = Extreme{Value: entry.High.Value, Timestamp: entry.High.Timestamp}
			ledger.Low = Extreme{Value: entry.Low.Value, Timestamp: entry.Low.Timestamp}
			ledger.LastReset = entry.LastReset
		}
		if entry, ok := ledgers[persist.KeyAllTime]; ok {
			state.allTime.High = Extreme{Value: entry.High.Value, Timestamp: entry.High.Timestamp}
			state.allTime.Low = Extreme{Value: entry.Low.Value, Timestamp: entry.Low.Timestamp}
		}
		state.deriveAverages()
	}
}
