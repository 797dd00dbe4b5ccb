package app

import (
	"testing"
	"time"

	"sensor-extremes/internal/archive"
)

func makeSamples(n int) []archive.Sample {
	base := time.Date(2024, time.March, 13, 8, 0, 0, 0, time.Local)
	samples := make([]archive.Sample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, archive.Sample{
			SourceID: "sensor.outdoor_temp",
			Value:    float64(i),
			At:       base.Add(time.Duration(i) * time.Minute),
		})
	}
	return samples
}

func TestDownsample(t *testing.T) {
	samples := makeSamples(10)

	cases := []struct {
		name string
		max  int
		want int
	}{
		{"no limit", 0, 10},
		{"under limit", 20, 10},
		{"exact limit", 10, 10},
		{"single point", 1, 1},
		{"two points", 2, 2},
		{"half", 5, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := downsample(samples, tc.max)
			if len(got) != tc.want {
				t.Fatalf("downsample(%d samples, max=%d) returned %d samples, want %d",
					len(samples), tc.max, len(got), tc.want)
			}
		})
	}
}

func TestDownsampleKeepsEndpoints(t *testing.T) {
	samples := makeSamples(100)

	got := downsample(samples, 4)
	if len(got) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(got))
	}
	if got[0].At != samples[0].At {
		t.Fatalf("first sample should be kept, got %v", got[0].At)
	}
	if got[len(got)-1].At != samples[len(samples)-1].At {
		t.Fatalf("last sample should be kept, got %v", got[len(got)-1].At)
	}
}
