package ports

import (
	"context"

	"github.com/sidneifjr/ignite-timer/internal/domain"
)

// CycleReader is the read side of the cycle store that views consume.
type CycleReader interface {
	Snapshot() domain.State
}

// Timer is an interactive view over the cycle store.
// This is a driving port (calls into the application layer).
type Timer interface {
	// Run starts the view and blocks until the user quits or ctx ends.
	Run(ctx context.Context) error
}
