package patentverify

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	compound         TEXT NOT NULL,
	patents_found    INTEGER NOT NULL DEFAULT 0,
	patents_verified INTEGER NOT NULL DEFAULT 0,
	success          INTEGER NOT NULL DEFAULT 0,
	output_file      TEXT NOT NULL DEFAULT '',
	error            TEXT NOT NULL DEFAULT '',
	started_at       TEXT NOT NULL,
	completed_at     TEXT NOT NULL
);
`

// RunRecord is one completed pipeline run as stored in the history DB.
type RunRecord struct {
	ID              int64  `db:"id"`
	Compound        string `db:"compound"`
	PatentsFound    int    `db:"patents_found"`
	PatentsVerified int    `db:"patents_verified"`
	Success         bool   `db:"success"`
	OutputFile      string `db:"output_file"`
	Error           string `db:"error"`
	StartedAt       string `db:"started_at"`
	CompletedAt     string `db:"completed_at"`
}

// RunHistory keeps a SQLite log of every run, independent of the JSON
// result files. History failures are advisory; callers log and move on.
type RunHistory struct {
	db *sqlx.DB
}

func OpenRunHistory(dbPath string) (*RunHistory, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &RunHistory{db: db}, nil
}

func (h *RunHistory) Close() error { return h.db.Close() }

func (h *RunHistory) Record(res RunResult) error {
	errText := res.Error
	if errText == "" && !res.Success {
		errText = res.Message
	}
	_, err := h.db.Exec(`INSERT INTO runs (compound, patents_found, patents_verified, success, output_file, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Compound,
		res.PatentsFound,
		res.PatentsVerified,
		boolToInt(res.Success),
		res.OutputFile,
		errText,
		timeToString(res.Metadata.StartedAt),
		timeToString(res.Metadata.CompletedAt),
	)
	return err
}

// Recent returns the latest runs, newest first.
func (h *RunHistory) Recent(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	records := []RunRecord{}
	err := h.db.Select(&records, `SELECT id, compound, patents_found, patents_verified, success, output_file, error, started_at, completed_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	return records, err
}

func timeToString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
