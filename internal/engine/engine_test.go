package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sensor-extremes/internal/persist"
)

func testEngine() *Engine {
	return New([]SourceSpec{{
		ID:              "sensor.outdoor_temp",
		Name:            "Outdoor Temperature",
		Unit:            "°C",
		DecimalPlaces:   1,
		AveragingWindow: 5 * time.Minute,
	}}, zerolog.Nop())
}

func TestIngestScenario(t *testing.T) {
	eng := testEngine()
	t0 := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)
	t2 := t0.Add(2 * time.Minute)

	for _, step := range []struct {
		raw string
		at  time.Time
	}{
		{"10.05", t0},
		{"20.0", t1},
		{"5.0", t2},
	} {
		if _, ok := eng.Ingest("sensor.outdoor_temp", step.raw, step.at); !ok {
			t.Fatalf("reading %q rejected", step.raw)
		}
	}

	report, ok := eng.Report("sensor.outdoor_temp", t2)
	if !ok {
		t.Fatal("report missing")
	}

	day := report.Periods[PeriodDay]
	if day.High.Value == nil || *day.High.Value != 20.0 || !day.High.Timestamp.Equal(t1) {
		t.Fatalf("unexpected day high: %+v", day.High)
	}
	// 10.05 rounds to 10.1 on ingest; 5.0 then takes the low.
	if day.Low.Value == nil || *day.Low.Value != 5.0 || !day.Low.Timestamp.Equal(t2) {
		t.Fatalf("unexpected day low: %+v", day.Low)
	}

	// (10.1 + 20.0 + 5.0) / 3 = 11.7 at one decimal place.
	if report.Current == nil || *report.Current != 11.7 {
		t.Fatalf("unexpected rolling average: %v", report.Current)
	}

	// Midpoint of 20.0 and 5.0.
	if day.Average == nil || *day.Average != 12.5 {
		t.Fatalf("unexpected day midpoint average: %v", day.Average)
	}
}

func TestIngestSentinelsAreNoOps(t *testing.T) {
	eng := testEngine()
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

	for _, raw := range []string{"unknown", "unavailable", "Unknown", ""} {
		if _, ok := eng.Ingest("sensor.outdoor_temp", raw, now); ok {
			t.Fatalf("sentinel %q should not be accepted", raw)
		}
	}

	report, _ := eng.Report("sensor.outdoor_temp", now)
	if report.Periods[PeriodDay].High.Value != nil {
		t.Fatal("sentinels must not touch the ledgers")
	}
}

func TestIngestInvalidValueDropped(t *testing.T) {
	eng := testEngine()
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

	if _, ok := eng.Ingest("sensor.outdoor_temp", "not-a-number", now); ok {
		t.Fatal("non-numeric reading should be dropped")
	}
	if _, ok := eng.Ingest("sensor.nope", "5", now); ok {
		t.Fatal("unconfigured source should be dropped")
	}
}

func TestHighNeverBelowLow(t *testing.T) {
	eng := testEngine()
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

	values := []string{"3", "-2", "7.5", "7.5", "0", "12.3", "-2"}
	for i, raw := range values {
		eng.Ingest("sensor.outdoor_temp", raw, now.Add(time.Duration(i)*time.Second))
	}

	report, _ := eng.Report("sensor.outdoor_temp", now.Add(time.Minute))
	for _, p := range Periods {
		period := report.Periods[p]
		if period.High.Value == nil || period.Low.Value == nil {
			t.Fatalf("%s extremes should be present", p)
		}
		if *period.High.Value < *period.Low.Value {
			t.Fatalf("%s high %v below low %v", p, *period.High.Value, *period.Low.Value)
		}
	}
	if *report.AllTime.High.Value != 12.3 || *report.AllTime.Low.Value != -2 {
		t.Fatalf("unexpected all-time extremes: %+v", report.AllTime)
	}
}

func TestAllTimeSurvivesRollover(t *testing.T) {
	eng := testEngine()
	day1 := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)

	eng.Ingest("sensor.outdoor_temp", "30", day1)
	eng.Ingest("sensor.outdoor_temp", "-10", day1.Add(time.Minute))

	eng.RolloverCheck(day2)

	report, _ := eng.Report("sensor.outdoor_temp", day2)
	if report.Periods[PeriodDay].High.Value != nil {
		t.Fatal("day ledger should be cleared by the tick")
	}
	if *report.AllTime.High.Value != 30 || *report.AllTime.Low.Value != -10 {
		t.Fatalf("all-time extremes must survive resets: %+v", report.AllTime)
	}

	// A later, milder sample must not shrink the all-time records.
	eng.Ingest("sensor.outdoor_temp", "5", day2.Add(time.Hour))
	report, _ = eng.Report("sensor.outdoor_temp", day2.Add(time.Hour))
	if *report.AllTime.High.Value != 30 || *report.AllTime.Low.Value != -10 {
		t.Fatalf("all-time extremes regressed: %+v", report.AllTime)
	}
}

func TestRolloverCheckIdempotent(t *testing.T) {
	eng := testEngine()
	midWeek := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC) // Wednesday

	eng.Ingest("sensor.outdoor_temp", "10", midWeek.Add(-time.Hour))
	eng.RolloverCheck(midWeek)
	first, _ := eng.Report("sensor.outdoor_temp", midWeek)

	eng.RolloverCheck(midWeek)
	second, _ := eng.Report("sensor.outdoor_temp", midWeek)

	for _, p := range Periods {
		a, b := first.Periods[p], second.Periods[p]
		if (a.LastReset == nil) != (b.LastReset == nil) {
			t.Fatalf("%s last_reset presence changed", p)
		}
		if a.LastReset != nil && !a.LastReset.Equal(*b.LastReset) {
			t.Fatalf("%s last_reset moved on repeated tick", p)
		}
		if (a.High.Value == nil) != (b.High.Value == nil) {
			t.Fatalf("%s high presence changed on repeated tick", p)
		}
	}
}

func TestRolloverCheckGating(t *testing.T) {
	eng := testEngine()
	tuesday := time.Date(2024, time.March, 12, 23, 0, 0, 0, time.UTC)
	wednesday := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)

	eng.Ingest("sensor.outdoor_temp", "15", tuesday)

	// A midnight tick on a Wednesday resets the day only.
	eng.RolloverCheck(wednesday)

	report, _ := eng.Report("sensor.outdoor_temp", wednesday)
	day := report.Periods[PeriodDay]
	if day.High.Value != nil || day.LastReset == nil || !day.LastReset.Equal(wednesday) {
		t.Fatalf("day ledger not reset by tick: %+v", day)
	}

	week := report.Periods[PeriodWeek]
	if week.High.Value == nil || *week.High.Value != 15 {
		t.Fatalf("week ledger should be untouched mid-week: %+v", week)
	}
	month := report.Periods[PeriodMonth]
	if month.High.Value == nil {
		t.Fatalf("month ledger should be untouched on the 13th: %+v", month)
	}
}

func TestIngestSelfHealsStaleLedger(t *testing.T) {
	eng := testEngine()
	yesterday := time.Date(2024, time.March, 12, 23, 0, 0, 0, time.UTC)
	today := time.Date(2024, time.March, 13, 8, 0, 0, 0, time.UTC)

	eng.Ingest("sensor.outdoor_temp", "50", yesterday)
	// No tick ran overnight; the next sample must roll the day over first.
	eng.Ingest("sensor.outdoor_temp", "10", today)

	report, _ := eng.Report("sensor.outdoor_temp", today)
	day := report.Periods[PeriodDay]
	if *day.High.Value != 10 {
		t.Fatalf("stale day high leaked across the rollover: %v", *day.High.Value)
	}
	if !day.LastReset.Equal(today) {
		t.Fatalf("day last_reset not refreshed: %v", day.LastReset)
	}

	week := report.Periods[PeriodWeek]
	if *week.High.Value != 50 {
		t.Fatalf("week ledger should retain both days: %v", *week.High.Value)
	}
}

func TestReportSelfHealsStalePeriod(t *testing.T) {
	eng := testEngine()
	yesterday := time.Date(2024, time.March, 12, 23, 0, 0, 0, time.UTC)
	today := time.Date(2024, time.March, 13, 8, 0, 0, 0, time.UTC)

	eng.Ingest("sensor.outdoor_temp", "50", yesterday)

	report, _ := eng.Report("sensor.outdoor_temp", today)
	day := report.Periods[PeriodDay]
	if day.High.Value != nil {
		t.Fatal("report must not show extremes from a closed day")
	}
	if day.LastReset == nil || !day.LastReset.Equal(today) {
		t.Fatalf("report should stamp the healed ledger: %v", day.LastReset)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	eng := testEngine()
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

	eng.Ingest("sensor.outdoor_temp", "21.5", now)
	eng.Ingest("sensor.outdoor_temp", "18.2", now.Add(time.Minute))

	doc := eng.ExportLedgers()

	restored := testEngine()
	restored.ImportLedgers(doc)

	want, _ := eng.Report("sensor.outdoor_temp", now.Add(time.Minute))
	got, _ := restored.Report("sensor.outdoor_temp", now.Add(time.Minute))

	for _, p := range Periods {
		a, b := want.Periods[p], got.Periods[p]
		if *a.High.Value != *b.High.Value || !a.High.Timestamp.Equal(*b.High.Timestamp) {
			t.Fatalf("%s high did not round-trip: %+v vs %+v", p, a.High, b.High)
		}
		if *a.Low.Value != *b.Low.Value || !a.Low.Timestamp.Equal(*b.Low.Timestamp) {
			t.Fatalf("%s low did not round-trip: %+v vs %+v", p, a.Low, b.Low)
		}
		if !a.LastReset.Equal(*b.LastReset) {
			t.Fatalf("%s last_reset did not round-trip", p)
		}
	}
	if *got.AllTime.High.Value != 21.5 || *got.AllTime.Low.Value != 18.2 {
		t.Fatalf("all-time did not round-trip: %+v", got.AllTime)
	}

	// The rolling window is not persisted.
	if got.WindowSamples != 0 {
		t.Fatalf("window must start empty after restore, got %d samples", got.WindowSamples)
	}
}

func TestImportToleratesMissingPeriod(t *testing.T) {
	eng := testEngine()
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

	value := 7.0
	doc := persist.Document{Extremes: map[string]persist.SourceLedgers{
		"sensor.outdoor_temp": {
			"day": persist.Entry{
				High:      persist.Extreme{Value: &value, Timestamp: &now},
				Low:       persist.Extreme{Value: &value, Timestamp: &now},
				LastReset: &now,
			},
			// week, month, year, all_time absent
		},
		"sensor.retired": {},
	}}

	eng.ImportLedgers(doc)

	report, _ := eng.Report("sensor.outdoor_temp", now)
	if *report.Periods[PeriodDay].High.Value != 7.0 {
		t.Fatal("day ledger should have loaded")
	}
	if report.Periods[PeriodWeek].High.Value != nil {
		t.Fatal("missing week period must stay absent")
	}
	if report.AllTime.High.Value != nil {
		t.Fatal("missing all_time entry must stay absent")
	}
}
