package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"framed/internal/catalog"
	"framed/internal/config"
)

// Store manages conversion job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Track registers the raw video as a job if it is not already tracked, and
// returns the current row. A previously failed or succeeded job whose source
// mtime changed is reset to pending with zero attempts: the user replaced the
// file, so it is a new job.
func (s *Store) Track(ctx context.Context, item catalog.Item, destination string) (*Job, error) {
	existing, err := s.GetBySource(ctx, item.Path)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().UTC()
	if existing == nil {
		job := &Job{
			ID:          uuid.NewString(),
			SourcePath:  item.Path,
			SourceName:  item.Name,
			SourceMtime: item.Mtime.UTC(),
			Destination: destination,
			Status:      StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO conversion_jobs (
                id, source_path, source_name, source_mtime, destination,
                status, attempts, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
			job.ID, job.SourcePath, job.SourceName,
			job.SourceMtime.Format(time.RFC3339Nano), job.Destination,
			job.Status, formatTime(now), formatTime(now),
		)
		if err != nil {
			return nil, fmt.Errorf("insert job: %w", err)
		}
		return job, nil
	}

	if !existing.SourceMtime.Equal(item.Mtime.UTC()) &&
		(existing.Status == StatusFailed || existing.Status == StatusSucceeded) {
		if err := s.reset(ctx, existing.ID, item.Mtime.UTC()); err != nil {
			return nil, err
		}
		return s.GetBySource(ctx, item.Path)
	}
	return existing, nil
}

func (s *Store) reset(ctx context.Context, id string, mtime time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversion_jobs
         SET status = ?, attempts = 0, error_message = NULL, next_attempt_at = NULL,
             source_mtime = ?, updated_at = ?
         WHERE id = ?`,
		StatusPending, mtime.Format(time.RFC3339Nano), formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("reset job: %w", err)
	}
	return nil
}

// NextReady returns the oldest pending job whose backoff has elapsed, or nil.
func (s *Store) NextReady(ctx context.Context, now time.Time) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM conversion_jobs
         WHERE status = ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
         ORDER BY created_at ASC LIMIT 1`,
		StatusPending, formatTime(now.UTC()),
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next ready job: %w", err)
	}
	return job, nil
}

// GetBySource returns the job tracking the given source path.
func (s *Store) GetBySource(ctx context.Context, sourcePath string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM conversion_jobs WHERE source_path = ?`, sourcePath)
	job, err := scanJob(row)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// MarkRunning transitions a job to running.
func (s *Store) MarkRunning(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusRunning, "")
}

// MarkSucceeded transitions a job to its terminal success state.
func (s *Store) MarkSucceeded(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusSucceeded, "")
}

// MarkRetry records a failed attempt and requeues the job as pending with a
// backoff gate. The caller decides whether attempts remain.
func (s *Store) MarkRetry(ctx context.Context, id string, reason string, nextAttempt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversion_jobs
         SET status = ?, attempts = attempts + 1, error_message = ?,
             next_attempt_at = ?, updated_at = ?
         WHERE id = ?`,
		StatusPending, reason, formatTime(nextAttempt.UTC()), formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("mark retry: %w", err)
	}
	return nil
}

// MarkFailed records a terminal failure. The source file is left untouched.
func (s *Store) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversion_jobs
         SET status = ?, attempts = attempts + 1, error_message = ?,
             next_attempt_at = NULL, updated_at = ?
         WHERE id = ?`,
		StatusFailed, reason, formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// Forget drops a job from tracking, used when its source file vanished.
func (s *Store) Forget(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversion_jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("forget job: %w", err)
	}
	return nil
}

// ResetStuckRunning returns running jobs to pending. Called once at startup:
// a job can only be mid-run if a previous process died with it in flight.
func (s *Store) ResetStuckRunning(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversion_jobs
         SET status = ?, next_attempt_at = NULL, updated_at = ?
         WHERE status = ?`,
		StatusPending, formatTime(time.Now().UTC()), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck running: %w", err)
	}
	return res.RowsAffected()
}

// List returns all jobs ordered by creation time.
func (s *Store) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM conversion_jobs ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// Summarize aggregates job counts per lifecycle state.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM conversion_jobs GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize jobs: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var statusStr string
		var count int
		if err := rows.Scan(&statusStr, &count); err != nil {
			return Summary{}, fmt.Errorf("scan summary row: %w", err)
		}
		summary.Total += count
		switch Status(statusStr) {
		case StatusPending:
			summary.Pending = count
		case StatusRunning:
			summary.Running = count
		case StatusSucceeded:
			summary.Succeeded = count
		case StatusFailed:
			summary.Failed = count
		}
	}
	return summary, rows.Err()
}

func (s *Store) setStatus(ctx context.Context, id string, status Status, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversion_jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status, nullableString(reason), formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("set status %s: %w", status, err)
	}
	return nil
}

const jobColumns = "id, source_path, source_name, source_mtime, destination, status, attempts, error_message, next_attempt_at, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job           Job
		statusStr     string
		mtimeRaw      string
		errorMessage  sql.NullString
		nextAttemptAt sql.NullString
		createdRaw    string
		updatedRaw    string
	)
	if err := scanner.Scan(
		&job.ID, &job.SourcePath, &job.SourceName, &mtimeRaw, &job.Destination,
		&statusStr, &job.Attempts, &errorMessage, &nextAttemptAt, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}

	status, ok := ParseStatus(statusStr)
	if !ok {
		return nil, fmt.Errorf("unknown job status %q", statusStr)
	}
	job.Status = status
	job.ErrorMessage = errorMessage.String

	var err error
	if job.SourceMtime, err = parseTime(mtimeRaw); err != nil {
		return nil, fmt.Errorf("parse source mtime: %w", err)
	}
	if job.CreatedAt, err = parseTime(createdRaw); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if job.UpdatedAt, err = parseTime(updatedRaw); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if nextAttemptAt.Valid {
		parsed, err := parseTime(nextAttemptAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse next_attempt_at: %w", err)
		}
		job.NextAttemptAt = &parsed
	}
	return &job, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, raw)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
