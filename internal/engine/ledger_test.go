package engine

import (
	"testing"
	"time"
)

func TestPeriodContains(t *testing.T) {
	base := time.Date(2024, time.March, 13, 15, 0, 0, 0, time.UTC) // Wednesday

	cases := []struct {
		name   string
		period Period
		other  time.Time
		want   bool
	}{
		{"same day", PeriodDay, base.Add(8 * time.Hour), true},
		{"next day", PeriodDay, base.Add(24 * time.Hour), false},
		{"same iso week", PeriodWeek, base.Add(2 * 24 * time.Hour), true}, // Friday
		{"next monday", PeriodWeek, time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC), false},
		{"same month", PeriodMonth, time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC), true},
		{"same month other year", PeriodMonth, time.Date(2025, time.March, 13, 15, 0, 0, 0, time.UTC), false},
		{"same year", PeriodYear, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), true},
		{"next year", PeriodYear, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.period.contains(base, tc.other); got != tc.want {
				t.Fatalf("contains(%v, %v) = %v, want %v", base, tc.other, got, tc.want)
			}
		})
	}
}

func TestPeriodContainsISOWeekYearBoundary(t *testing.T) {
	// Mon 2024-12-30 and Wed 2025-01-01 share ISO week 1 of 2025.
	a := time.Date(2024, time.December, 30, 10, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)
	if !PeriodWeek.contains(a, b) {
		t.Fatal("days in the same ISO week across a year boundary should match")
	}
	if PeriodYear.contains(a, b) {
		t.Fatal("different calendar years should not match")
	}
}

func TestObserveStrictComparison(t *testing.T) {
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)

	var ledger PeriodLedger
	ledger.Reset(now)
	ledger.Observe(10, now)

	// A tie must not move the timestamp.
	ledger.Observe(10, later)
	if !ledger.High.Timestamp.Equal(now) || !ledger.Low.Timestamp.Equal(now) {
		t.Fatalf("tie moved a record timestamp: high=%v low=%v", ledger.High.Timestamp, ledger.Low.Timestamp)
	}

	ledger.Observe(11, later)
	if *ledger.High.Value != 11 || !ledger.High.Timestamp.Equal(later) {
		t.Fatalf("high not updated: %+v", ledger.High)
	}
	if *ledger.Low.Value != 10 {
		t.Fatalf("low should remain 10, got %v", *ledger.Low.Value)
	}

	ledger.Observe(9, later)
	if *ledger.Low.Value != 9 || !ledger.Low.Timestamp.Equal(later) {
		t.Fatalf("low not updated: %+v", ledger.Low)
	}
}

func TestLedgerCurrent(t *testing.T) {
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

	var ledger PeriodLedger
	if ledger.Current(PeriodDay, now) {
		t.Fatal("missing last_reset must count as stale")
	}

	ledger.Reset(now)
	if !ledger.Current(PeriodDay, now.Add(time.Hour)) {
		t.Fatal("same-day instant should be current")
	}
	if ledger.Current(PeriodDay, now.Add(24*time.Hour)) {
		t.Fatal("next-day instant should be stale")
	}
}

func TestTickDue(t *testing.T) {
	monday := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)    // Mon, Jan 1
	thursday := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC) // Thu, Feb 1
	midWeek := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)    // Wed, Mar 13

	cases := []struct {
		period Period
		now    time.Time
		want   bool
	}{
		{PeriodDay, midWeek, true},
		{PeriodDay, monday, true},
		{PeriodWeek, monday, true},
		{PeriodWeek, midWeek, false},
		{PeriodWeek, thursday, false},
		{PeriodMonth, thursday, true},
		{PeriodMonth, midWeek, false},
		{PeriodYear, monday, true},
		{PeriodYear, thursday, false},
	}

	for _, tc := range cases {
		if got := tc.period.tickDue(tc.now); got != tc.want {
			t.Errorf("tickDue(%s, %v) = %v, want %v", tc.period, tc.now, got, tc.want)
		}
	}
}
