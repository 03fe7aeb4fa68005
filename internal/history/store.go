package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"logship/internal/config"
)

const lockRetryDelay = 100 * time.Millisecond

// Store manages the shipping-attempt journal backed by SQLite. A file lock
// next to the database serializes concurrent post-build invocations from the
// host; SQLite's busy timeout covers the rest.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open connects to the history database, bootstrapping the schema on first
// use. The ctx bounds how long Open waits for the journal lock.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "history.lock"))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}
	if !ok {
		return nil, errors.New("history journal is locked by another logship instance")
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close releases the database connection and the journal lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// RecordAttempt inserts one shipping attempt. A missing ID or timestamp is
// filled in before the insert.
func (s *Store) RecordAttempt(ctx context.Context, attempt *Attempt) error {
	if attempt == nil {
		return errors.New("attempt is nil")
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO attempts (
            id, build_id, job, transport, max_lines,
            broken, outcome, error_detail, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID,
		attempt.BuildID,
		nullableString(attempt.Job),
		attempt.Transport,
		attempt.MaxLines,
		boolToInt(attempt.Broken),
		boolToInt(attempt.Outcome),
		nullableString(attempt.ErrorDetail),
		attempt.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

const attemptColumns = `id, build_id, job, transport, max_lines, broken, outcome, error_detail, created_at`

// Recent returns the newest attempts, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+attemptColumns+` FROM attempts ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// ForBuild returns attempts recorded for one build, oldest first.
func (s *Store) ForBuild(ctx context.Context, buildID string) ([]*Attempt, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE build_id = ? ORDER BY created_at`,
		buildID,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts for build: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// Stats returns attempt counts grouped by outcome.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(1) FROM attempts GROUP BY outcome`)
	if err != nil {
		return Stats{}, fmt.Errorf("attempt stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var outcome, count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return Stats{}, err
		}
		if outcome != 0 {
			stats.Succeeded = count
		} else {
			stats.Failed = count
		}
	}
	return stats, rows.Err()
}

// Prune removes attempts recorded before the cutoff and reports how many
// rows were deleted.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM attempts WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune attempts: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*Attempt, error) {
	var (
		attempt     Attempt
		job         sql.NullString
		broken      int
		outcome     int
		errorDetail sql.NullString
		createdAt   string
	)
	if err := row.Scan(
		&attempt.ID,
		&attempt.BuildID,
		&job,
		&attempt.Transport,
		&attempt.MaxLines,
		&broken,
		&outcome,
		&errorDetail,
		&createdAt,
	); err != nil {
		return nil, fmt.Errorf("scan attempt: %w", err)
	}
	attempt.Job = job.String
	attempt.Broken = broken != 0
	attempt.Outcome = outcome != 0
	attempt.ErrorDetail = errorDetail.String

	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse attempt timestamp: %w", err)
	}
	attempt.CreatedAt = parsed
	return &attempt, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
