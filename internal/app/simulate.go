package app

import (
	"context"
	"errors"
	"time"

	"sensor-extremes/internal/engine"
)

// Simulate runs a scripted sequence of readings through a fresh engine
// and prints the resulting report. Useful for verifying configuration
// without a broker.
func (a *App) Simulate(_ context.Context, opts SimulateOptions) error {
	if len(a.Config.Sources) == 0 {
		return errors.New("no sources configured")
	}
	if len(opts.Values) == 0 {
		return errors.New("at least one value is required")
	}

	sourceID := opts.SourceID
	if sourceID == "" {
		sourceID = a.Config.Sources[0].ID
	}

	spacing := opts.Spacing
	if spacing <= 0 {
		spacing = time.Minute
	}

	eng := a.newEngine()

	now := time.Now()
	start := now.Add(-time.Duration(len(opts.Values)-1) * spacing)
	for i, raw := range opts.Values {
		at := start.Add(time.Duration(i) * spacing)
		if _, ok := eng.Ingest(sourceID, raw, at); !ok {
			a.Logger.Warn().Str("value", raw).Msg("reading rejected")
		}
	}

	report, ok := eng.Report(sourceID, now)
	if !ok {
		return errors.New("unknown source " + sourceID)
	}
	renderReports([]engine.SourceReport{report})
	return nil
}
