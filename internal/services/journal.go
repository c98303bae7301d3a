package services

import (
	"context"
	"time"

	"github.com/sidneifjr/ignite-timer/internal/domain"
	"github.com/sidneifjr/ignite-timer/internal/event"
	"github.com/sidneifjr/ignite-timer/internal/logging"
	"github.com/sidneifjr/ignite-timer/internal/ports"
)

// journalTimeout bounds a single journal write.
const journalTimeout = 2 * time.Second

// JournalRecorder mirrors cycle transitions from the bus into a journal.
type JournalRecorder struct {
	journal ports.CycleJournal
	logger  *logging.Logger
	bus     *event.Bus
	subs    []string
}

// NewJournalRecorder creates a recorder writing to journal.
func NewJournalRecorder(journal ports.CycleJournal, logger *logging.Logger) *JournalRecorder {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &JournalRecorder{journal: journal, logger: logger.WithComponent("journal")}
}

// Attach starts recording events published on bus.
func (r *JournalRecorder) Attach(bus *event.Bus) {
	r.bus = bus
	r.subs = append(r.subs,
		bus.Subscribe(event.TypeCycleCreated, r.handle),
		bus.Subscribe(event.TypeCycleInterrupted, r.handle),
		bus.Subscribe(event.TypeCycleFinished, r.handle),
	)
}

// Detach stops recording.
func (r *JournalRecorder) Detach() {
	if r.bus == nil {
		return
	}
	for _, id := range r.subs {
		r.bus.Unsubscribe(id)
	}
	r.subs = nil
}

func (r *JournalRecorder) handle(e event.Event) {
	var (
		cycle   domain.Cycle
		elapsed int
	)
	switch e := e.(type) {
	case event.CycleCreatedEvent:
		cycle = e.Cycle
	case event.CycleInterruptedEvent:
		cycle, elapsed = e.Cycle, e.ElapsedSeconds
	case event.CycleFinishedEvent:
		cycle, elapsed = e.Cycle, e.Cycle.TargetSeconds()
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if err := r.journal.Record(ctx, cycle, elapsed); err != nil {
		r.logger.Warn("failed to record cycle", "cycle_id", cycle.ID, "event", e.EventType(), "error", err)
	}
}
