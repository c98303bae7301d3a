// Package ports defines the interfaces between the cycle services and
// the infrastructure around them: the tick scheduler, the run journal
// and the interactive view.
package ports

import "time"

// Ticket is the handle of a scheduled recurring job. Cancel stops
// further runs and is safe to call more than once.
type Ticket interface {
	Cancel()
}

// Scheduler runs a function on a fixed interval until the returned
// ticket is cancelled.
// This is a driven port (implemented by adapters).
type Scheduler interface {
	// Every schedules fn to run every interval.
	Every(interval time.Duration, fn func()) (Ticket, error)

	// Stop cancels every outstanding ticket and waits for running jobs.
	Stop()
}
