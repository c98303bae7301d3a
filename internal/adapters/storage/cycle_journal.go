package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/sidneifjr/ignite-timer/internal/domain"
	"github.com/sidneifjr/ignite-timer/internal/ports"
)

const cycleColumns = `id, task, minutes_amount, started_at, interrupted_at, finished_at`

// Record inserts cycle, or updates the stored row while it is still in
// progress. Rows that already carry a terminal timestamp are left alone.
func (s *sqliteJournal) Record(ctx context.Context, cycle domain.Cycle, elapsedSeconds int) error {
	query := `
		INSERT INTO cycles (id, task, minutes_amount, started_at, interrupted_at, finished_at, elapsed_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			interrupted_at = excluded.interrupted_at,
			finished_at = excluded.finished_at,
			elapsed_seconds = excluded.elapsed_seconds
		WHERE cycles.interrupted_at IS NULL AND cycles.finished_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		cycle.ID,
		cycle.Task,
		cycle.MinutesAmount,
		cycle.StartDate.UnixNano(),
		nullableTime(cycle.InterruptedDate),
		nullableTime(cycle.FinishedDate),
		elapsedSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to record cycle: %w", err)
	}

	return nil
}

// FindByID retrieves a recorded cycle.
func (s *sqliteJournal) FindByID(ctx context.Context, id string) (*domain.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM cycles WHERE id = ?`

	cycle, err := scanCycle(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCycleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cycle: %w", err)
	}
	return cycle, nil
}

// List returns every recorded cycle, newest first.
func (s *sqliteJournal) List(ctx context.Context) ([]domain.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM cycles ORDER BY started_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cycles []domain.Cycle
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cycles = append(cycles, *cycle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cycles: %w", err)
	}
	return cycles, nil
}

// Summary aggregates the journal.
func (s *sqliteJournal) Summary(ctx context.Context) (*ports.JournalSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN finished_at IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN interrupted_at IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(elapsed_seconds), 0),
			MIN(started_at)
		FROM cycles
	`

	var summary ports.JournalSummary
	var focusedSeconds int64
	var first sql.NullInt64
	err := s.db.QueryRowContext(ctx, query).Scan(
		&summary.Total,
		&summary.Finished,
		&summary.Interrupted,
		&focusedSeconds,
		&first,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize cycles: %w", err)
	}

	summary.InProgress = summary.Total - summary.Finished - summary.Interrupted
	summary.FocusedTime = time.Duration(focusedSeconds) * time.Second
	if first.Valid {
		t := time.Unix(0, first.Int64)
		summary.FirstStartedAt = &t
	}
	return &summary, nil
}

// MatchTasks does a fuzzy search over distinct task names. Names that
// differ only in case collapse to the most recently used spelling.
func (s *sqliteJournal) MatchTasks(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task FROM cycles ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks for fuzzy search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[string]bool)
	var tasks []string
	for rows.Next() {
		var task string
		if err := rows.Scan(&task); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		key := strings.ToLower(task)
		if !seen[key] {
			seen[key] = true
			tasks = append(tasks, task)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	var result []string
	for _, match := range fuzzy.Find(query, tasks) {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, match.Str)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner) (*domain.Cycle, error) {
	var c domain.Cycle
	var startedAt int64
	var interruptedAt, finishedAt sql.NullInt64

	if err := row.Scan(&c.ID, &c.Task, &c.MinutesAmount, &startedAt, &interruptedAt, &finishedAt); err != nil {
		return nil, err
	}

	c.StartDate = time.Unix(0, startedAt)
	c.InterruptedDate = timeFromNull(interruptedAt)
	c.FinishedDate = timeFromNull(finishedAt)
	return &c, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}

func timeFromNull(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(0, n.Int64)
	return &t
}
