package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/accrandomash-cloud/Tiktokkk/internal/types"
)

// HistoryDB records the outcome of finished jobs. It is an audit log, not
// a queue: jobs are never resumed from it.
type HistoryDB struct {
	db *sql.DB
}

// NewHistoryDB opens (and if needed creates) the history database
func NewHistoryDB(dbPath string) (*HistoryDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		prompt TEXT NOT NULL,
		link_count INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		duration_seconds REAL,
		output_bytes INTEGER,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	return &HistoryDB{db: db}, nil
}

// SaveJob records one finished job
func (h *HistoryDB) SaveJob(rec types.JobRecord) error {
	query := `
	INSERT INTO jobs (job_id, prompt, link_count, status, error, duration_seconds, output_bytes, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	prompt := rec.Prompt
	if len(prompt) > 200 {
		prompt = prompt[:200]
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := h.db.Exec(query, rec.JobID, prompt, rec.LinkCount, rec.Status,
		rec.Error, rec.DurationSec, rec.OutputBytes, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save job record: %v", err)
	}
	return nil
}

// ListJobs returns the most recent job records, newest first
func (h *HistoryDB) ListJobs(limit int) ([]types.JobRecord, error) {
	query := `
	SELECT job_id, prompt, link_count, status, error, duration_seconds, output_bytes, created_at
	FROM jobs ORDER BY created_at DESC LIMIT ?
	`

	rows, err := h.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %v", err)
	}
	defer rows.Close()

	var records []types.JobRecord
	for rows.Next() {
		var rec types.JobRecord
		var errMsg sql.NullString
		if err := rows.Scan(&rec.JobID, &rec.Prompt, &rec.LinkCount, &rec.Status,
			&errMsg, &rec.DurationSec, &rec.OutputBytes, &rec.CreatedAt); err != nil {
			continue
		}
		rec.Error = errMsg.String
		records = append(records, rec)
	}

	return records, nil
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	return h.db.Close()
}
