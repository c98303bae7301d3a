// Package services implements the cycle use cases: the cycle store, the
// countdown driver and the form intake that feeds them.
package services

import (
	"errors"
	"sync"
	"time"

	"github.com/sidneifjr/ignite-timer/internal/domain"
	"github.com/sidneifjr/ignite-timer/internal/event"
	"github.com/sidneifjr/ignite-timer/internal/logging"
)

// StoreOptions configures a CycleStore. Zero values select defaults.
type StoreOptions struct {
	Now    func() time.Time
	NewID  func() string
	Logger *logging.Logger
}

// CycleStore owns the cycle history and the active-cycle pointer. Every
// mutation goes through domain.Reduce and swaps in a whole new State, so
// readers only ever see complete states.
type CycleStore struct {
	mu     sync.RWMutex
	state  domain.State
	bus    *event.Bus
	now    func() time.Time
	newID  func() string
	logger *logging.Logger
}

// NewCycleStore creates an empty store that publishes transitions on bus.
func NewCycleStore(bus *event.Bus, opts StoreOptions) *CycleStore {
	s := &CycleStore{
		bus:    bus,
		now:    opts.Now,
		newID:  opts.NewID,
		logger: opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = domain.NewCycleID
	}
	if s.logger == nil {
		s.logger = logging.NopLogger()
	}
	s.logger = s.logger.WithComponent("store")
	if s.bus == nil {
		s.bus = event.NewBus(s.logger)
	}
	return s
}

// Bus returns the bus the store publishes on.
func (s *CycleStore) Bus() *event.Bus {
	return s.bus
}

// Dispatch applies an intent. Events are published after the new state
// is visible to readers.
func (s *CycleStore) Dispatch(in domain.Intent) error {
	s.mu.Lock()
	prev := s.state
	next, err := domain.Reduce(prev, in, s.now())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.mu.Unlock()

	s.publish(prev, next, in)
	return nil
}

func (s *CycleStore) publish(prev, next domain.State, in domain.Intent) {
	switch in.(type) {
	case domain.CreateCycle:
		created, _ := next.Active()
		s.logger.Info("cycle created", "cycle_id", created.ID, "task", created.Task, "minutes", created.MinutesAmount)
		s.bus.Publish(event.NewCycleCreatedEvent(created))
	case domain.InterruptCycle:
		c := terminalCopy(prev, next)
		s.logger.Info("cycle interrupted", "cycle_id", c.ID, "elapsed_seconds", next.ElapsedSeconds)
		s.bus.Publish(event.NewCycleInterruptedEvent(c, next.ElapsedSeconds))
	case domain.FinishCycle:
		c := terminalCopy(prev, next)
		s.logger.Info("cycle finished", "cycle_id", c.ID)
		s.bus.Publish(event.NewCycleFinishedEvent(c))
	}
}

// terminalCopy returns the cycle that was active in prev, as stamped in next.
func terminalCopy(prev, next domain.State) domain.Cycle {
	active, _ := prev.Active()
	for i := len(next.Cycles) - 1; i >= 0; i-- {
		if next.Cycles[i].ID == active.ID {
			return next.Cycles[i]
		}
	}
	return active
}

// CreateCycle appends a new active cycle and resets the elapsed counter.
// It fails with domain.ErrCycleAlreadyActive while another cycle runs.
func (s *CycleStore) CreateCycle(task string, minutesAmount int) (string, error) {
	id := s.newID()
	if err := s.Dispatch(domain.CreateCycle{ID: id, Task: task, MinutesAmount: minutesAmount}); err != nil {
		return "", err
	}
	return id, nil
}

// InterruptActiveCycle stamps the active cycle as interrupted. It reports
// false when there was nothing to interrupt.
func (s *CycleStore) InterruptActiveCycle() bool {
	return s.terminate(domain.InterruptCycle{})
}

// FinishActiveCycle stamps the active cycle as finished. It reports false
// when there was nothing to finish.
func (s *CycleStore) FinishActiveCycle() bool {
	return s.terminate(domain.FinishCycle{})
}

// InterruptCycle interrupts cycleID only if it is still the active cycle.
func (s *CycleStore) InterruptCycle(cycleID string) bool {
	return s.terminate(domain.InterruptCycle{CycleID: cycleID})
}

// FinishCycle finishes cycleID only if it is still the active cycle.
func (s *CycleStore) FinishCycle(cycleID string) bool {
	return s.terminate(domain.FinishCycle{CycleID: cycleID})
}

func (s *CycleStore) terminate(in domain.Intent) bool {
	err := s.Dispatch(in)
	switch {
	case err == nil:
		return true
	case errors.Is(err, domain.ErrNoActiveCycle):
		// Stale callbacks from the view or a cancelled tick land here.
		s.logger.Debug("ignored intent without active cycle", "intent", intentName(in))
	default:
		s.logger.Warn("intent rejected", "intent", intentName(in), "error", err)
	}
	return false
}

// SetElapsedSeconds records externally computed elapsed time for the
// active cycle.
func (s *CycleStore) SetElapsedSeconds(n int) {
	s.mu.RLock()
	id := s.state.ActiveCycleID
	s.mu.RUnlock()
	if id == "" {
		return
	}
	s.RecordElapsed(id, n)
}

// RecordElapsed records elapsed time for cycleID. Values for a cycle that
// is no longer active are dropped and false is returned.
func (s *CycleStore) RecordElapsed(cycleID string, seconds int) bool {
	s.mu.Lock()
	prev := s.state
	next, ok := prev.WithElapsed(cycleID, seconds)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.mu.Unlock()

	if next.ElapsedSeconds != prev.ElapsedSeconds {
		active, _ := next.Active()
		s.bus.Publish(event.NewCycleElapsedEvent(cycleID, next.ElapsedSeconds, active.TargetSeconds()))
	}
	return true
}

// Snapshot returns the current state. The returned value shares its
// cycle slice with the store and must be treated as read-only.
func (s *CycleStore) Snapshot() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ActiveCycle returns the active cycle, if any.
func (s *CycleStore) ActiveCycle() (domain.Cycle, bool) {
	return s.Snapshot().Active()
}

// Cycles returns a copy of the cycle history in creation order.
func (s *CycleStore) Cycles() []domain.Cycle {
	state := s.Snapshot()
	out := make([]domain.Cycle, len(state.Cycles))
	copy(out, state.Cycles)
	return out
}

// ElapsedSeconds returns the last elapsed time recorded for the active
// (or most recently stopped) cycle.
func (s *CycleStore) ElapsedSeconds() int {
	return s.Snapshot().ElapsedSeconds
}

func intentName(in domain.Intent) string {
	switch in.(type) {
	case domain.CreateCycle:
		return "create"
	case domain.InterruptCycle:
		return "interrupt"
	case domain.FinishCycle:
		return "finish"
	default:
		return "unknown"
	}
}
