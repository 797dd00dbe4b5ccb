package source

import (
	"context"
	"time"
)

// Reading is one raw sample as delivered by a feed: an opaque source
// key, the raw payload, and the arrival instant.
type Reading struct {
	SourceID string
	Raw      string
	At       time.Time
}

// Handler consumes readings. Handlers must not block; the engine's
// ingest path is synchronous and bounded.
type Handler func(ctx context.Context, r Reading)

// Feed delivers readings to a handler until the context is cancelled.
type Feed interface {
	Run(ctx context.Context, handle Handler) error
}
