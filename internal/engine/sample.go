package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Sentinel states hosts publish when a source has no usable reading.
// They are dropped without logging.
const (
	StateUnknown     = "unknown"
	StateUnavailable = "unavailable"
)

func isSentinel(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StateUnknown, StateUnavailable, "":
		return true
	}
	return false
}

// normalize parses a raw reading and rounds it to the configured
// number of decimal places.
func normalize(raw string, places int32) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse reading %q: %w", raw, err)
	}
	return d.Round(places).InexactFloat64(), nil
}

// roundTo rounds a derived value to the source's decimal places.
func roundTo(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}
