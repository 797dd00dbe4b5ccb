package engine

import (
	"testing"
	"time"
)

func TestWindowEvictionBoundary(t *testing.T) {
	w := newRollingWindow(5 * time.Minute)
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

	// Exactly at the cutoff: evicted. Just inside: kept.
	w.push(1, now.Add(-5*time.Minute))
	w.push(2, now.Add(-5*time.Minute).Add(time.Second))
	w.push(3, now)

	if w.size() != 2 {
		t.Fatalf("expected 2 samples after eviction, got %d", w.size())
	}

	mean, ok := w.average()
	if !ok {
		t.Fatal("average should be present")
	}
	if mean != 2.5 {
		t.Fatalf("expected mean 2.5, got %v", mean)
	}
}

func TestWindowEmptyAverage(t *testing.T) {
	w := newRollingWindow(time.Minute)
	if _, ok := w.average(); ok {
		t.Fatal("empty window must report no average")
	}
}

func TestWindowEvictsAllStale(t *testing.T) {
	w := newRollingWindow(time.Minute)
	base := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

	w.push(1, base)
	w.push(2, base.Add(10*time.Second))
	w.push(3, base.Add(10*time.Minute))

	if w.size() != 1 {
		t.Fatalf("expected only the newest sample, got %d", w.size())
	}
	mean, _ := w.average()
	if mean != 3 {
		t.Fatalf("expected mean 3, got %v", mean)
	}
}
