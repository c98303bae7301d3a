package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/sidneifjr/ignite-timer/internal/domain"
	"github.com/sidneifjr/ignite-timer/internal/event"
	"github.com/sidneifjr/ignite-timer/internal/logging"
	"github.com/sidneifjr/ignite-timer/internal/ports"
)

// DefaultTickInterval is the nominal period of the countdown.
const DefaultTickInterval = time.Second

// Phase is the state of the countdown driver.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// countdownStore is the part of the cycle store the driver needs.
type countdownStore interface {
	Snapshot() domain.State
	RecordElapsed(cycleID string, seconds int) bool
	FinishCycle(cycleID string) bool
}

// CountdownOptions configures a Countdown. Zero values select defaults.
type CountdownOptions struct {
	Interval time.Duration
	Now      func() time.Time
	Logger   *logging.Logger
}

// Countdown derives elapsed time for the active cycle from the wall clock
// and finishes the cycle when its target is reached. It holds at most one
// scheduler ticket, bound to the cycle it is anchored on.
type Countdown struct {
	store     countdownStore
	bus       *event.Bus
	scheduler ports.Scheduler
	interval  time.Duration
	now       func() time.Time
	logger    *logging.Logger

	mu      sync.Mutex
	phase   Phase
	cycleID string
	origin  time.Time
	target  int
	ticket  ports.Ticket
	subs    []string
}

// NewCountdown creates an idle driver. Call Attach to start following
// the store.
func NewCountdown(store countdownStore, bus *event.Bus, scheduler ports.Scheduler, opts CountdownOptions) *Countdown {
	d := &Countdown{
		store:     store,
		bus:       bus,
		scheduler: scheduler,
		interval:  opts.Interval,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if d.interval <= 0 {
		d.interval = DefaultTickInterval
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.logger == nil {
		d.logger = logging.NopLogger()
	}
	d.logger = d.logger.WithComponent("countdown")
	return d
}

// Attach subscribes to cycle events and anchors on the cycle that is
// already active, if any. Elapsed time is recomputed from the cycle's
// start date, so re-attaching never double-counts.
func (d *Countdown) Attach() error {
	d.mu.Lock()
	if len(d.subs) == 0 {
		d.subs = []string{
			d.bus.Subscribe(event.TypeCycleCreated, d.onCreated),
			d.bus.Subscribe(event.TypeCycleInterrupted, d.onTerminal),
			d.bus.Subscribe(event.TypeCycleFinished, d.onTerminal),
		}
	}
	d.mu.Unlock()

	if active, ok := d.store.Snapshot().Active(); ok {
		return d.anchor(active)
	}
	return nil
}

// Detach unsubscribes from the bus and releases any held ticket.
func (d *Countdown) Detach() {
	d.mu.Lock()
	subs := d.subs
	d.subs = nil
	d.releaseLocked()
	d.phase = PhaseIdle
	d.cycleID = ""
	d.mu.Unlock()

	for _, id := range subs {
		d.bus.Unsubscribe(id)
	}
}

// Phase returns the current driver state.
func (d *Countdown) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// CycleID returns the cycle the driver is anchored on, or "".
func (d *Countdown) CycleID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cycleID
}

func (d *Countdown) onCreated(e event.Event) {
	created, ok := e.(event.CycleCreatedEvent)
	if !ok {
		return
	}
	if err := d.anchor(created.Cycle); err != nil {
		d.logger.Error("failed to start countdown", "cycle_id", created.Cycle.ID, "error", err)
	}
}

func (d *Countdown) onTerminal(e event.Event) {
	var id string
	switch e := e.(type) {
	case event.CycleInterruptedEvent:
		id = e.Cycle.ID
	case event.CycleFinishedEvent:
		id = e.Cycle.ID
	default:
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cycleID != id {
		return
	}
	d.releaseLocked()
	d.phase = PhaseIdle
	d.cycleID = ""
	d.logger.Debug("countdown released", "cycle_id", id, "reason", e.EventType())
}

// anchor moves the driver onto cycle c. Any ticket from a previous cycle
// is cancelled before the new one is acquired.
func (d *Countdown) anchor(c domain.Cycle) error {
	if d.store.Snapshot().ActiveCycleID != c.ID {
		d.logger.Debug("skipping anchor on inactive cycle", "cycle_id", c.ID)
		return nil
	}

	d.mu.Lock()
	if d.phase == PhaseRunning && d.cycleID == c.ID {
		d.mu.Unlock()
		return nil
	}
	d.releaseLocked()

	d.phase = PhaseRunning
	d.cycleID = c.ID
	d.origin = c.StartDate
	d.target = c.TargetSeconds()

	ticket, err := d.scheduler.Every(d.interval, d.Tick)
	if err != nil {
		d.phase = PhaseIdle
		d.cycleID = ""
		d.mu.Unlock()
		return fmt.Errorf("failed to schedule countdown: %w", err)
	}
	d.ticket = ticket
	d.mu.Unlock()

	d.logger.Info("countdown anchored", "cycle_id", c.ID, "target_seconds", c.TargetSeconds())
	d.Tick()
	return nil
}

// dropStale releases the ticket held for a cycle the store no longer
// considers active.
func (d *Countdown) dropStale(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != PhaseRunning || d.cycleID != id {
		return
	}
	d.releaseLocked()
	d.phase = PhaseIdle
	d.cycleID = ""
	d.logger.Debug("countdown released", "cycle_id", id, "reason", "stale")
}

// releaseLocked cancels the held ticket. d.mu must be held.
func (d *Countdown) releaseLocked() {
	if d.ticket != nil {
		d.ticket.Cancel()
		d.ticket = nil
	}
}

// Tick recomputes elapsed time as now minus the cycle's start date and
// finishes the cycle once the target is reached. The reported value is
// clamped to the target.
func (d *Countdown) Tick() {
	d.mu.Lock()
	if d.phase != PhaseRunning {
		d.mu.Unlock()
		return
	}
	id := d.cycleID
	elapsed := int(d.now().Sub(d.origin) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	completed := elapsed >= d.target
	if completed {
		elapsed = d.target
		d.phase = PhaseCompleted
		d.releaseLocked()
	}
	d.mu.Unlock()

	recorded := d.store.RecordElapsed(id, elapsed)
	if !completed {
		if !recorded {
			d.dropStale(id)
		}
		return
	}

	if !d.store.FinishCycle(id) {
		d.logger.Debug("cycle already stopped at completion", "cycle_id", id)
	}

	d.mu.Lock()
	if d.cycleID == id && d.phase == PhaseCompleted {
		d.phase = PhaseIdle
		d.cycleID = ""
	}
	d.mu.Unlock()
}
