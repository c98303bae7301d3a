// Package storage provides the SQLite implementation of the cycle journal.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sidneifjr/ignite-timer/internal/ports"
)

// MemoryDSN keeps the database in process memory. It is gone when the
// process exits.
const MemoryDSN = ":memory:"

// sqliteJournal implements ports.CycleJournal using SQLite.
type sqliteJournal struct {
	db *sql.DB
}

// Ensure sqliteJournal implements ports.CycleJournal.
var _ ports.CycleJournal = (*sqliteJournal)(nil)

// New opens a journal at dsn and creates its schema.
func New(dsn string) (ports.CycleJournal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to :memory: gets its own database.
	db.SetMaxOpenConns(1)

	journal := &sqliteJournal{db: db}
	if err := journal.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return journal, nil
}

// NewMemory creates an in-memory journal scoped to the process.
func NewMemory() (ports.CycleJournal, error) {
	return New(MemoryDSN)
}

// Close closes the database connection.
func (s *sqliteJournal) Close() error {
	return s.db.Close()
}

// Migrate creates the database schema. Timestamps are unix nanoseconds.
func (s *sqliteJournal) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cycles (
		id TEXT PRIMARY KEY,
		task TEXT NOT NULL,
		minutes_amount INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		interrupted_at INTEGER,
		finished_at INTEGER,
		elapsed_seconds INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}
