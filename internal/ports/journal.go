package ports

import (
	"context"
	"time"

	"github.com/sidneifjr/ignite-timer/internal/domain"
)

// JournalSummary aggregates the cycles recorded during this run.
type JournalSummary struct {
	Total          int
	Finished       int
	Interrupted    int
	InProgress     int
	FocusedTime    time.Duration
	FirstStartedAt *time.Time
}

// CycleJournal mirrors cycle transitions into a queryable store that
// lives as long as the process.
// This is a driven port (implemented by adapters).
type CycleJournal interface {
	// Record inserts the cycle or stamps its terminal timestamps.
	// Terminal rows are never rewritten.
	Record(ctx context.Context, cycle domain.Cycle, elapsedSeconds int) error

	// FindByID retrieves a recorded cycle.
	FindByID(ctx context.Context, id string) (*domain.Cycle, error)

	// List returns recorded cycles, newest first.
	List(ctx context.Context) ([]domain.Cycle, error)

	// Summary returns aggregated statistics for the run.
	Summary(ctx context.Context) (*JournalSummary, error)

	// MatchTasks returns distinct task names that fuzzy-match query,
	// best match first.
	MatchTasks(ctx context.Context, query string, limit int) ([]string, error)

	// Close releases the underlying database.
	Close() error
}
