package engine

import "time"

type sample struct {
	value float64
	at    time.Time
}

// rollingWindow keeps the samples observed within a trailing time
// span. Samples arrive in timestamp order, so eviction is a prefix
// trim. The window is a working set only and is never persisted.
type rollingWindow struct {
	span    time.Duration
	samples []sample
}

func newRollingWindow(span time.Duration) *rollingWindow {
	return &rollingWindow{span: span}
}

// push appends one sample and evicts everything at or before the
// cutoff now-span.
func (w *rollingWindow) push(value float64, now time.Time) {
	w.samples = append(w.samples, sample{value: value, at: now})

	cutoff := now.Add(-w.span)
	keep := 0
	for keep < len(w.samples) && !w.samples[keep].at.After(cutoff) {
		keep++
	}
	if keep > 0 {
		w.samples = append(w.samples[:0], w.samples[keep:]...)
	}
}

// average returns the arithmetic mean of the retained samples, or
// false when the window is empty.
func (w *rollingWindow) average() (float64, bool) {
	if len(w.samples) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, s := range w.samples {
		sum += s.value
	}
	return sum / float64(len(w.samples)), true
}

func (w *rollingWindow) size() int {
	return len(w.samples)
}
