package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one ledger row.
type Run struct {
	ID            string
	Episode       string
	Status        Status
	StartedAt     time.Time
	FinishedAt    time.Time
	Articles      int
	Included      int
	Skipped       int
	FileSize      int64
	FailureReason string
	ErrorMessage  string
	LogPath       string
}

// Duration returns the elapsed run time, or zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome carries the counters recorded when a run ends.
type Outcome struct {
	Articles      int
	Included      int
	Skipped       int
	FileSize      int64
	FailureReason string
	ErrorMessage  string
}

// Begin inserts a running row.
func (s *Store) Begin(ctx context.Context, id, episode string, started time.Time, logPath string) error {
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, episode, status, started_at, log_path) VALUES (?, ?, ?, ?, ?)`,
		id, episode, string(StatusRunning), started.UTC().Format(timeLayout), logPath,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// Finish marks the run succeeded or failed and stores its counters.
func (s *Store) Finish(ctx context.Context, id string, status Status, finished time.Time, outcome Outcome) error {
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, articles = ?, included = ?, skipped = ?,
		 file_size = ?, failure_reason = ?, error_message = ? WHERE id = ?`,
		string(status), finished.UTC().Format(timeLayout), outcome.Articles, outcome.Included, outcome.Skipped,
		outcome.FileSize, outcome.FailureReason, outcome.ErrorMessage, id,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Recent returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, episode, status, started_at, finished_at, articles, included, skipped,
	          file_size, failure_reason, error_message, log_path
	          FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
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

// Get returns a single run.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, episode, status, started_at, finished_at, articles, included, skipped,
		 file_size, failure_reason, error_message, log_path FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// MarkAbandoned fails rows left running by a crashed process.
func (s *Store) MarkAbandoned(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, failure_reason = 'abandoned',
		 error_message = 'process exited before the run finished' WHERE status = ?`,
		string(StatusFailed), now.UTC().Format(timeLayout), string(StatusRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		status   string
		started  string
		finished sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Episode, &status, &started, &finished, &run.Articles, &run.Included,
		&run.Skipped, &run.FileSize, &run.FailureReason, &run.ErrorMessage, &run.LogPath); err != nil {
		return Run{}, err
	}
	run.Status = Status(status)
	if t, err := time.Parse(timeLayout, started); err == nil {
		run.StartedAt = t
	}
	if finished.Valid {
		if t, err := time.Parse(timeLayout, finished.String); err == nil {
			run.FinishedAt = t
		}
	}
	return run, nil
}
