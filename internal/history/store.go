// Package history persists per-run summaries to a local SQLite database so
// consecutive report runs can be compared without keeping the workbooks
// around.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alsinaforms/tablillas/internal/engine"
)

// RunRecord is one stored run summary.
type RunRecord struct {
	ID               int64
	SourceFile       string
	BackendName      string
	RecordCount      int
	TotalOpenTablets int
	AcceptedCount    int
	RejectedCount    int
	DuplicateCount   int
	RejectionReasons map[engine.RejectReason]int
	CreatedAt        time.Time
}

// Store wraps the runs database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path with WAL mode enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_file TEXT NOT NULL,
	backend TEXT NOT NULL,
	record_count INTEGER NOT NULL,
	total_open_tablets INTEGER NOT NULL,
	accepted_count INTEGER NOT NULL,
	rejected_count INTEGER NOT NULL,
	duplicate_count INTEGER NOT NULL,
	rejection_reasons TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_source_idx ON runs(source_file, created_at);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// RecordRun stores one run summary and returns its id. A zero CreatedAt is
// stamped with the current time.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	reasons := rec.RejectionReasons
	if reasons == nil {
		reasons = map[engine.RejectReason]int{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
INSERT INTO runs (source_file, backend, record_count, total_open_tablets,
	accepted_count, rejected_count, duplicate_count, rejection_reasons, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id;
`,
		rec.SourceFile,
		rec.BackendName,
		rec.RecordCount,
		rec.TotalOpenTablets,
		rec.AcceptedCount,
		rec.RejectedCount,
		rec.DuplicateCount,
		string(reasonsJSON),
		rec.CreatedAt.UTC().Format(time.RFC3339),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, source_file, backend, record_count, total_open_tablets,
	accepted_count, rejected_count, duplicate_count, rejection_reasons, created_at
FROM runs
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// LastRunFor returns the most recent run for a source file, if any.
func (s *Store) LastRunFor(ctx context.Context, sourceFile string) (RunRecord, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, source_file, backend, record_count, total_open_tablets,
	accepted_count, rejected_count, duplicate_count, rejection_reasons, created_at
FROM runs
WHERE source_file = ?
ORDER BY id DESC
LIMIT 1;
`, sourceFile)
	if err != nil {
		return RunRecord{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return RunRecord{}, false, rows.Err()
	}
	rec, err := scanRun(rows)
	if err != nil {
		return RunRecord{}, false, err
	}
	return rec, true, nil
}

func scanRun(rows *sql.Rows) (RunRecord, error) {
	var (
		rec         RunRecord
		reasonsJSON string
		created     string
	)
	if err := rows.Scan(
		&rec.ID,
		&rec.SourceFile,
		&rec.BackendName,
		&rec.RecordCount,
		&rec.TotalOpenTablets,
		&rec.AcceptedCount,
		&rec.RejectedCount,
		&rec.DuplicateCount,
		&reasonsJSON,
		&created,
	); err != nil {
		return RunRecord{}, err
	}

	if err := json.Unmarshal([]byte(reasonsJSON), &rec.RejectionReasons); err != nil {
		return RunRecord{}, err
	}
	if parsed, err := time.Parse(time.RFC3339, created); err == nil {
		rec.CreatedAt = parsed
	}
	return rec, nil
}

// FromResult builds a RunRecord from a processed run.
func FromResult(sourceFile, backendName string, res *engine.RunResult) RunRecord {
	return RunRecord{
		SourceFile:       sourceFile,
		BackendName:      backendName,
		RecordCount:      len(res.Records),
		TotalOpenTablets: res.TotalOpenTablets(),
		AcceptedCount:    res.Summary.AcceptedCount,
		RejectedCount:    res.Summary.RejectedCount,
		DuplicateCount:   res.Summary.DuplicateCount,
		RejectionReasons: res.Summary.RejectionReasons,
	}
}
