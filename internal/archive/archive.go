package archive

import "time"

// Sample is one accepted reading archived for later export.
type Sample struct {
	SourceID string
	Value    float64
	At       time.Time
}

// Recorder archives accepted samples. The engine never depends on it;
// a recording failure only means a gap in the export history.
type Recorder interface {
	RecordSample(s Sample) error
	ListSamples(sourceID string, from, to time.Time) ([]Sample, error)
	Close() error
}

// NoopRecorder is used when the archive is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSample(_ Sample) error { return nil }
func (n *NoopRecorder) ListSamples(_ string, _, _ time.Time) ([]Sample, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
