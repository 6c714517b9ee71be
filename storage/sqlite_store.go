package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"twcli/internal/timeutil"
	"twcli/submitter"
)

const (
	DefaultDirName  = ".twcli"
	DefaultFileName = "journal.db"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrAmbiguousRun = errors.New("run id prefix matches several runs")
)

// Run is one recorded SaveTime invocation.
type Run struct {
	ID          string
	TaskID      string
	StartDate   time.Time
	Requested   int
	Description string
	DryRun      bool
	CreatedAt   time.Time
}

// Submission is the recorded outcome of one allocated day.
type Submission struct {
	ID      int64
	RunID   string
	Day     time.Time
	Hours   int
	Status  string
	Remote  string
	EntryID string
	Error   string
}

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath returns $HOME/.twcli/journal.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName, DefaultFileName), nil
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	start_date TEXT NOT NULL,
	requested INTEGER NOT NULL CHECK(requested > 0),
	description TEXT NOT NULL,
	dry_run INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	day TEXT NOT NULL,
	hours INTEGER NOT NULL CHECK(hours >= 0),
	status TEXT NOT NULL,
	remote_status TEXT NOT NULL DEFAULT '',
	entry_id TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_submissions_run ON submissions(run_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// RecordRun stores a new run and returns its generated id.
func (s *SQLiteStore) RecordRun(ctx context.Context, req submitter.Request) (string, error) {
	id := uuid.NewString()
	const insertStmt = `
INSERT INTO runs (id, task_id, start_date, requested, description, dry_run, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`

	_, err := s.db.ExecContext(
		ctx,
		insertStmt,
		id,
		req.TaskID,
		timeutil.FormatISODay(req.StartDate),
		req.Hours,
		req.Description,
		boolToInt(req.DryRun),
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordDay appends the outcome of one allocated day to runID.
func (s *SQLiteStore) RecordDay(ctx context.Context, runID string, day submitter.DayResult) error {
	const insertStmt = `
INSERT INTO submissions (run_id, day, hours, status, remote_status, entry_id, error)
VALUES (?, ?, ?, ?, ?, ?, ?);`

	errText := ""
	if day.Outcome.Err != nil {
		errText = day.Outcome.Err.Error()
	}
	_, err := s.db.ExecContext(
		ctx,
		insertStmt,
		runID,
		timeutil.FormatISODay(day.Day),
		day.Hours,
		string(day.Outcome.Status),
		day.Outcome.Remote,
		day.Outcome.EntryID,
		errText,
	)
	if err != nil {
		return fmt.Errorf("insert submission for run %s: %w", runID, err)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit <= 0 lists all.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
SELECT id, task_id, start_date, requested, description, dry_run, created_at
FROM runs
ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, 32)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FindRun resolves a full run id or a unique prefix of one.
func (s *SQLiteStore) FindRun(ctx context.Context, idOrPrefix string) (Run, error) {
	const query = `
SELECT id, task_id, start_date, requested, description, dry_run, created_at
FROM runs
WHERE id = ? OR id LIKE ? || '%'
ORDER BY created_at DESC
LIMIT 2;`

	rows, err := s.db.QueryContext(ctx, query, idOrPrefix, idOrPrefix)
	if err != nil {
		return Run{}, fmt.Errorf("query run %s: %w", idOrPrefix, err)
	}
	defer rows.Close()

	matches := make([]Run, 0, 2)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == idOrPrefix {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate runs: %w", err)
	}

	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

func (s *SQLiteStore) ListSubmissions(ctx context.Context, runID string) ([]Submission, error) {
	const query = `
SELECT id, run_id, day, hours, status, remote_status, entry_id, error
FROM submissions
WHERE run_id = ?
ORDER BY day, id;`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	out := make([]Submission, 0, 8)
	for rows.Next() {
		var (
			item   Submission
			dayRaw string
		)
		if err := rows.Scan(
			&item.ID,
			&item.RunID,
			&dayRaw,
			&item.Hours,
			&item.Status,
			&item.Remote,
			&item.EntryID,
			&item.Error,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		item.Day, err = timeutil.ParseISODay(dayRaw)
		if err != nil {
			return nil, fmt.Errorf("parse submission day: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

// DeleteRun removes a run together with its submissions.
func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE run_id = ?;`, runID); err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("delete submissions of run %s: %w", runID, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?;`, runID)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("delete run %s: %w", runID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("read deleted row count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete transaction: %w", err)
	}
	return rowsAffected > 0, nil
}

// DeleteAllRuns clears the journal and returns the number of removed runs.
func (s *SQLiteStore) DeleteAllRuns(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions;`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete submissions: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs;`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete transaction: %w", err)
	}
	return rows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		startRaw   string
		dryRun     int
		createdRaw string
	)
	if err := row.Scan(
		&run.ID,
		&run.TaskID,
		&startRaw,
		&run.Requested,
		&run.Description,
		&dryRun,
		&createdRaw,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	run.StartDate, err = timeutil.ParseISODay(startRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse run start date: %w", err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339, createdRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse run created_at %q: %w", createdRaw, err)
	}
	run.DryRun = dryRun != 0
	return run, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
