package archive

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder archives samples to a local SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs
// migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so exports can read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With().Str("component", "archive").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sample archive opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS samples (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			source_id TEXT NOT NULL,
			value     REAL NOT NULL,
			ts        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_source_ts ON samples(source_id, ts)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordSample inserts one accepted sample.
func (r *SQLiteRecorder) RecordSample(s Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO samples (source_id, value, ts) VALUES (?, ?, ?)`,
		s.SourceID, s.Value, s.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record sample: %w", err)
	}
	return nil
}

// ListSamples returns archived samples for one source within
// [from, to), ordered by timestamp.
func (r *SQLiteRecorder) ListSamples(sourceID string, from, to time.Time) ([]Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(
		`SELECT source_id, value, ts FROM samples
		 WHERE source_id = ? AND ts >= ? AND ts < ?
		 ORDER BY ts`,
		sourceID, from.UnixNano(), to.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var ts int64
		if err := rows.Scan(&s.SourceID, &s.Value, &ts); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		s.At = time.Unix(0, ts).UTC()
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// Close releases the database handle.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

var _ Recorder = (*SQLiteRecorder)(nil)
var _ Recorder = (*NoopRecorder)(nil)
