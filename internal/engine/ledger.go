package engine

import "time"

// Period identifies a calendar-aligned tracking bucket.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods lists the calendar periods in rollover order.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

// Extreme holds one observed record value and the instant it occurred.
// Both fields are nil until a sample lands in the period.
type Extreme struct {
	Value     *float64
	Timestamp *time.Time
}

func (x *Extreme) set(value float64, at time.Time) {
	v := value
	t := at
	x.Value = &v
	x.Timestamp = &t
}

// PeriodLedger tracks the high and low within one period instance.
type PeriodLedger struct {
	High      Extreme
	Low       Extreme
	LastReset *time.Time
}

// Reset clears both records and stamps the new period instance.
func (l *PeriodLedger) Reset(now time.Time) {
	l.High = Extreme{}
	l.Low = Extreme{}
	t := now
	l.LastReset = &t
}

// Observe applies one sample. Strict comparisons keep the earliest
// timestamp for a repeated extreme.
func (l *PeriodLedger) Observe(value float64, now time.Time) {
	if l.High.Value == nil || value > *l.High.Value {
		l.High.set(value, now)
	}
	if l.Low.Value == nil || value < *l.Low.Value {
		l.Low.set(value, now)
	}
}

// Current reports whether the ledger still represents the period
// instance containing now. A missing LastReset counts as stale.
func (l *PeriodLedger) Current(p Period, now time.Time) bool {
	if l.LastReset == nil {
		return false
	}
	return p.contains(*l.LastReset, now)
}

// AllTimeLedger tracks lifetime extremes. It is never reset.
type AllTimeLedger struct {
	High Extreme
	Low  Extreme
}

// Observe applies one sample with the same strict-comparison rule.
func (l *AllTimeLedger) Observe(value float64, now time.Time) {
	if l.High.Value == nil || value > *l.High.Value {
		l.High.set(value, now)
	}
	if l.Low.Value == nil || value < *l.Low.Value {
		l.Low.set(value, now)
	}
}

// contains reports whether a and b fall in the same instance of the
// period: same calendar date, same ISO week and year, same month and
// year, or same year.
func (p Period) contains(a, b time.Time) bool {
	switch p {
	case PeriodDay:
		ay, am, ad := a.Date()
		by, bm, bd := b.Date()
		return ay == by && am == bm && ad == bd
	case PeriodWeek:
		ay, aw := a.ISOWeek()
		by, bw := b.ISOWeek()
		return ay == by && aw == bw
	case PeriodMonth:
		return a.Year() == b.Year() && a.Month() == b.Month()
	case PeriodYear:
		return a.Year() == b.Year()
	}
	return false
}

// tickDue reports whether a calendar tick landing at now should reset
// this period. The day ledger resets on every tick; week, month, and
// year only when the tick lands on the first day of their instance.
func (p Period) tickDue(now time.Time) bool {
	switch p {
	case PeriodDay:
		return true
	case PeriodWeek:
		return now.Weekday() == time.Monday
	case PeriodMonth:
		return now.Day() == 1
	case PeriodYear:
		return now.Day() == 1 && now.Month() == time.January
	}
	return false
}
