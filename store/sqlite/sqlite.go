/*
Package sqlite provides a SQLite-backed payroll.RunStore.

PURPOSE:
  Keeps the audit trail of reconciliation runs. A run is written once as a
  JSON payload (policy, holiday figures, results, HR references) next to
  the columns the list view needs, so ListRuns never decodes payloads.
  Attendance sheets themselves are never stored.

KEY TABLES:
  runs: id, label, created_at, employees, grand_total_days,
        overtime_minutes, payload

INDEXES:
  - idx_runs_created_at: list ordering and the retention sweep

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite allows a single writer, and
  the pool is capped at one connection so ":memory:" databases stay shared.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/runs.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - payroll/store.go: RunStore contract
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/payroll"
)

// Store implements payroll.RunStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.RunStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		created_at TEXT NOT NULL,
		employees INTEGER NOT NULL,
		grand_total_days TEXT NOT NULL,
		overtime_minutes INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN STORE (payroll.RunStore interface)
// =============================================================================

// SaveRun stores a new run. Saving an existing ID fails.
func (s *Store) SaveRun(ctx context.Context, run payroll.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	sum := run.Summary()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, label, created_at, employees, grand_total_days, overtime_minutes, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Label,
		formatTime(run.CreatedAt),
		sum.Employees,
		sum.GrandTotalDays.String(),
		sum.OvertimeMinutes,
		string(payload),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("run %s already exists", run.ID)
		}
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun loads a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run payroll.Run
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns summaries newest first; ties break on ID.
func (s *Store) ListRuns(ctx context.Context) ([]payroll.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, created_at, employees, grand_total_days, overtime_minutes
		FROM runs
		ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	summaries := []payroll.RunSummary{}
	for rows.Next() {
		var (
			sum       payroll.RunSummary
			createdAt string
			grand     string
		)
		if err := rows.Scan(&sum.ID, &sum.Label, &createdAt, &sum.Employees, &grand, &sum.OvertimeMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		sum.GrandTotalDays, _ = decimal.NewFromString(grand)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// DeleteRunsBefore removes runs created before cutoff.
func (s *Store) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted runs: %w", err)
	}
	return int(n), nil
}

// formatTime writes a fixed-width UTC timestamp so text order is time order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
