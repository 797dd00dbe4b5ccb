package engine

import "time"

// PeriodReport is the displayable state of one period ledger.
type PeriodReport struct {
	High      Extreme
	Low       Extreme
	LastReset *time.Time
	Average   *float64
}

// SourceReport is a data-oriented snapshot of everything tracked for
// one source. Hosts iterate these to build whatever presentation they
// need; the engine knows nothing about display entities.
type SourceReport struct {
	ID              string
	Name            string
	Unit            string
	DecimalPlaces   int32
	AveragingWindow time.Duration
	WindowSamples   int
	Current         *float64
	Periods         map[Period]PeriodReport
	AllTime         PeriodReport
}

// Report snapshots one source as of now. Stale period ledgers are
// rolled over first so a report never shows extremes from a closed
// period instance.
func (e *Engine) Report(sourceID string, now time.Time) (SourceReport, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sources[sourceID]
	if !ok {
		return SourceReport{}, false
	}
	return e.reportLocked(state, now), true
}

// Reports snapshots every source in configuration order.
func (e *Engine) Reports(now time.Time) []SourceReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	reports := make([]SourceReport, 0, len(e.order))
	for _, id := range e.order {
		reports = append(reports, e.reportLocked(e.sources[id], now))
	}
	return reports
}

func (e *Engine) reportLocked(state *sourceState, now time.Time) SourceReport {
	report := SourceReport{
		ID:              state.spec.ID,
		Name:            state.spec.Name,
		Unit:            state.spec.Unit,
		DecimalPlaces:   state.spec.DecimalPlaces,
		AveragingWindow: state.spec.AveragingWindow,
		WindowSamples:   state.window.size(),
		Current:         state.current,
		Periods:         make(map[Period]PeriodReport, len(Periods)),
	}

	for _, p := range Periods {
		ledger := state.periods[p]
		if !ledger.Current(p, now) {
			ledger.Reset(now)
			state.periodAvgs[p] = nil
		}
		report.Periods[p] = PeriodReport{
			High:      ledger.High,
			Low:       ledger.Low,
			LastReset: ledger.LastReset,
			Average:   state.periodAvgs[p],
		}
	}

	report.AllTime = PeriodReport{High: state.allTime.High, Low: state.allTime.Low}
	return report
}
