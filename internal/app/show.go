package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"sensor-extremes/internal/engine"
)

// Show prints the persisted state per source and period.
func (a *App) Show(_ context.Context) error {
	if len(a.Config.Sources) == 0 {
		return errors.New("no sources configured")
	}

	store := a.newStore()
	if store == nil {
		return errors.New("persistence disabled; nothing to show")
	}

	doc, err := store.Load()
	if err != nil {
		return err
	}

	eng := a.newEngine()
	eng.ImportLedgers(doc)

	renderReports(eng.Reports(time.Now()))
	return nil
}

func renderReports(reports []engine.SourceReport) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Source\tPeriod\tHigh\tHigh At\tLow\tLow At\tAverage\tLast Reset")

	for _, report := range reports {
		for _, p := range engine.Periods {
			period := report.Periods[p]
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				report.ID,
				p,
				formatValue(period.High.Value, report.DecimalPlaces),
				formatInstant(period.High.Timestamp),
				formatValue(period.Low.Value, report.DecimalPlaces),
				formatInstant(period.Low.Timestamp),
				formatValue(period.Average, report.DecimalPlaces),
				formatInstant(period.LastReset),
			)
		}
		fmt.Fprintf(writer, "%s\tall_time\t%s\t%s\t%s\t%s\t\t\n",
			report.ID,
			formatValue(report.AllTime.High.Value, report.DecimalPlaces),
			formatInstant(report.AllTime.High.Timestamp),
			formatValue(report.AllTime.Low.Value, report.DecimalPlaces),
			formatInstant(report.AllTime.Low.Timestamp),
		)
		fmt.Fprintf(writer, "%s\tcurrent\t\t\t\t\t%s\t(window %s, %d samples)\n",
			report.ID,
			formatValue(report.Current, report.DecimalPlaces),
			report.AveragingWindow,
			report.WindowSamples,
		)
	}

	writer.Flush()
}

func formatValue(v *float64, places int32) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', int(places), 64)
}

func formatInstant(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
