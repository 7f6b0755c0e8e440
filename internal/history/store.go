package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"romnorm/internal/normalize"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Store persists run reports in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run summarizes one stored report.
type Run struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Processed  int       `json:"processed"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Cancelled  bool      `json:"cancelled"`
}

// Open creates or opens the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordReport stores report and its results in one transaction.
func (s *Store) RecordReport(ctx context.Context, report normalize.Report, dryRun bool) error {
	if strings.TrimSpace(report.RunID) == "" {
		return errors.New("report run id required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(run_id, started_at, finished_at, dry_run, processed, succeeded, failed, cancelled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		formatTime(report.StartedAt),
		nullableTime(report.FinishedAt),
		boolToInt(dryRun),
		report.Processed,
		report.Succeeded,
		report.Failed,
		boolToInt(report.Cancelled),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results
		(run_id, position, input_path, status, output_path, converter_id, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()
	for i, result := range report.Results {
		if _, err := stmt.ExecContext(ctx,
			report.RunID,
			i,
			result.InputPath,
			string(result.Status),
			nullableString(result.OutputPath),
			nullableString(result.ConverterID),
			nullableString(result.Error),
			result.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record tx: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT run_id, started_at, finished_at, dry_run, processed, succeeded, failed, cancelled
		FROM runs ORDER BY started_at DESC, rowid DESC`
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
		var (
			run       Run
			started   string
			finished  sql.NullString
			dryRun    int
			cancelled int
		)
		if err := rows.Scan(&run.RunID, &started, &finished, &dryRun, &run.Processed, &run.Succeeded, &run.Failed, &cancelled); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = parseTime(started)
		if finished.Valid {
			run.FinishedAt, _ = parseTime(finished.String)
		}
		run.DryRun = dryRun != 0
		run.Cancelled = cancelled != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Results returns the stored results of runID in plan order.
func (s *Store) Results(ctx context.Context, runID string) ([]normalize.ResultItem, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM runs WHERE run_id = ?", runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT input_path, status, output_path, converter_id, error, duration_ms
		FROM results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []normalize.ResultItem{}
	for rows.Next() {
		var (
			result     normalize.ResultItem
			status     string
			outputPath sql.NullString
			converter  sql.NullString
			errText    sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&result.InputPath, &status, &outputPath, &converter, &errText, &durationMS); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		result.Status = normalize.ResultStatus(status)
		result.OutputPath = outputPath.String
		result.ConverterID = converter.String
		result.Error = errText.String
		result.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, result)
	}
	return results, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
