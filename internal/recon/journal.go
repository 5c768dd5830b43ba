package recon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS reconcile_journal (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TEXT NOT NULL, -- RFC3339
    finished_at TEXT NOT NULL,
    creates INTEGER NOT NULL,
    updates INTEGER NOT NULL,
    deletes INTEGER NOT NULL,
    renames INTEGER NOT NULL,
    summary TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reconcile_journal_finished ON reconcile_journal(finished_at);
`

// Waypoint is one recorded reconcile pass. The host treats waypoints as
// opaque undo markers; Summary carries the JSON-encoded rename list and any
// extra detail the driver wants to keep.
type Waypoint struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Creates    int
	Updates    int
	Deletes    int
	Renames    int
	Summary    WaypointSummary
}

// WaypointSummary is the JSON payload stored with a waypoint.
type WaypointSummary struct {
	Renames []Rename `json:"renames,omitempty"`
	Note    string   `json:"note,omitempty"`
}

// Journal persists waypoints of applied reconcile passes in SQLite.
type Journal struct {
	db     *sql.DB
	dbPath string
}

func NewJournal(dbPath string) *Journal {
	return &Journal{dbPath: dbPath}
}

// Open opens the journal database, creating it and its directory on first
// use.
func (j *Journal) Open() error {
	if j.db != nil {
		return fmt.Errorf("reconcile journal already open")
	}
	if err := os.MkdirAll(filepath.Dir(j.dbPath), 0o755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite3", j.dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("open reconcile journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return fmt.Errorf("initialize journal schema: %w", err)
	}
	j.db = db
	return nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return fmt.Errorf("reconcile journal not open")
	}
	if err := j.db.Close(); err != nil {
		slog.Error("close reconcile journal", "error", err)
		return err
	}
	j.db = nil
	slog.Debug("reconcile journal closed")
	return nil
}

// Record appends a waypoint and returns its id.
func (j *Journal) Record(ctx context.Context, wp *Waypoint) (int64, error) {
	if j.db == nil {
		return 0, fmt.Errorf("reconcile journal not open")
	}
	summary, err := json.Marshal(wp.Summary)
	if err != nil {
		return 0, fmt.Errorf("encode waypoint summary: %w", err)
	}
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO reconcile_journal (started_at, finished_at, creates, updates, deletes, renames, summary)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		wp.StartedAt.UTC().Format(time.RFC3339Nano),
		wp.FinishedAt.UTC().Format(time.RFC3339Nano),
		wp.Creates, wp.Updates, wp.Deletes, wp.Renames,
		string(summary),
	)
	if err != nil {
		return 0, fmt.Errorf("record waypoint: %w", err)
	}
	return res.LastInsertId()
}

// Last returns the most recent waypoint, or nil when the journal is empty.
func (j *Journal) Last(ctx context.Context) (*Waypoint, error) {
	if j.db == nil {
		return nil, fmt.Errorf("reconcile journal not open")
	}
	row := j.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, creates, updates, deletes, renames, summary
		 FROM reconcile_journal ORDER BY id DESC LIMIT 1`)

	var wp Waypoint
	var startedAt, finishedAt, summary string
	err := row.Scan(&wp.ID, &startedAt, &finishedAt, &wp.Creates, &wp.Updates, &wp.Deletes, &wp.Renames, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read last waypoint: %w", err)
	}
	if wp.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("parse waypoint started_at: %w", err)
	}
	if wp.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return nil, fmt.Errorf("parse waypoint finished_at: %w", err)
	}
	if err := json.Unmarshal([]byte(summary), &wp.Summary); err != nil {
		return nil, fmt.Errorf("decode waypoint summary: %w", err)
	}
	return &wp, nil
}

// Count returns the number of recorded waypoints.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	if j.db == nil {
		return 0, fmt.Errorf("reconcile journal not open")
	}
	var n int64
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reconcile_journal`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count waypoints: %w", err)
	}
	return n, nil
}
