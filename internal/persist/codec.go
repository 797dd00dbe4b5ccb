package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// KeyAllTime is the ledger key for lifetime extremes. Unlike the
// calendar periods it carries no last_reset.
const KeyAllTime = "all_time"

// Extreme mirrors one persisted record. Absent values encode as null.
type Extreme struct {
	Value     *float64   `json:"value"`
	Timestamp *time.Time `json:"timestamp"`
}

// Entry is one persisted ledger: a period for a source, or all_time.
type Entry struct {
	High      Extreme    `json:"high"`
	Low       Extreme    `json:"low"`
	LastReset *time.Time `json:"last_reset"`
}

// allTimeEntry is the wire shape for the all_time ledger, which never
// carries a last_reset key.
type allTimeEntry struct {
	High Extreme `json:"high"`
	Low  Extreme `json:"low"`
}

// SourceLedgers maps period name to its ledger entry.
type SourceLedgers map[string]Entry

// Document is the full persisted state, keyed by source id.
type Document struct {
	Extremes map[string]SourceLedgers `json:"extremes"`
}

// Encode serializes the document. Timestamps round-trip exactly via
// RFC 3339 with nanoseconds. Calendar periods always write last_reset,
// null when never reset; all_time writes none.
func Encode(doc Document) ([]byte, error) {
	out := struct {
		Extremes map[string]map[string]any `json:"extremes"`
	}{Extremes: make(map[string]map[string]any, len(doc.Extremes))}

	for id, ledgers := range doc.Extremes {
		entries := make(map[string]any, len(ledgers))
		for period, entry := range ledgers {
			if period == KeyAllTime {
				entries[period] = allTimeEntry{High: entry.High, Low: entry.Low}
			} else {
				entries[period] = entry
			}
		}
		out.Extremes[id] = entries
	}

	blob, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode ledger document: %w", err)
	}
	return blob, nil
}

// Decode parses a persisted blob, tolerating partial damage: a corrupt
// source or period is skipped with a log line and never blocks the
// rest. A blob that is not a JSON object at the top level yields an
// empty document, not an error.
func Decode(blob []byte, logger zerolog.Logger) Document {
	doc := Document{Extremes: make(map[string]SourceLedgers)}

	var outer struct {
		Extremes map[string]json.RawMessage `json:"extremes"`
	}
	if err := json.Unmarshal(blob, &outer); err != nil {
		logger.Error().Err(err).Msg("persisted state unreadable; starting empty")
		return doc
	}

	for id, rawSource := range outer.Extremes {
		var periods map[string]json.RawMessage
		if err := json.Unmarshal(rawSource, &periods); err != nil {
			logger.Warn().Err(err).Str("source", id).Msg("corrupt persisted source skipped")
			continue
		}
		ledgers := make(SourceLedgers, len(periods))
		for period, rawEntry := range periods {
			var entry Entry
			if err := json.Unmarshal(rawEntry, &entry); err != nil {
				logger.Warn().Err(err).Str("source", id).Str("period", period).Msg("corrupt persisted period skipped")
				continue
			}
			ledgers[period] = entry
		}
		doc.Extremes[id] = ledgers
	}
	return doc
}
