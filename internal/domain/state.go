package domain

import (
	"fmt"
	"time"
)

// State is the complete cycle history plus the active-cycle pointer.
// A State is never modified after it is built; transitions return a new
// value with its own backing slice, so holders of an old State keep a
// consistent view.
type State struct {
	Cycles         []Cycle
	ActiveCycleID  string
	ElapsedSeconds int
}

// Active returns the active cycle, if there is one.
func (s State) Active() (Cycle, bool) {
	if s.ActiveCycleID == "" {
		return Cycle{}, false
	}
	for i := len(s.Cycles) - 1; i >= 0; i-- {
		if s.Cycles[i].ID == s.ActiveCycleID {
			return s.Cycles[i], true
		}
	}
	return Cycle{}, false
}

// RemainingSeconds returns the seconds left on the active cycle, or 0.
func (s State) RemainingSeconds() int {
	active, ok := s.Active()
	if !ok {
		return 0
	}
	remaining := active.TargetSeconds() - s.ElapsedSeconds
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Progress returns the completion ratio (0.0 to 1.0) of the active cycle.
func (s State) Progress() float64 {
	active, ok := s.Active()
	if !ok || active.TargetSeconds() == 0 {
		return 0
	}
	p := float64(s.ElapsedSeconds) / float64(active.TargetSeconds())
	if p > 1 {
		return 1
	}
	return p
}

// WithElapsed returns a state recording seconds of elapsed time for the
// given cycle. It reports false, and returns s unchanged, when cycleID is
// not the active cycle.
func (s State) WithElapsed(cycleID string, seconds int) (State, bool) {
	active, ok := s.Active()
	if !ok || active.ID != cycleID {
		return s, false
	}
	if seconds < 0 {
		seconds = 0
	}
	if target := active.TargetSeconds(); seconds > target {
		seconds = target
	}
	s.ElapsedSeconds = seconds
	return s, true
}

// Reduce applies an intent to a state and returns the resulting state.
// s is left untouched. ErrNoActiveCycle is returned for interrupt and
// finish intents that have nothing to act on; callers that receive stale
// intents treat it as a no-op.
func Reduce(s State, in Intent, now time.Time) (State, error) {
	switch in := in.(type) {
	case CreateCycle:
		return reduceCreate(s, in, now)
	case InterruptCycle:
		return reduceTerminal(s, in.CycleID, func(c Cycle) Cycle { return c.interrupt(now) })
	case FinishCycle:
		return reduceTerminal(s, in.CycleID, func(c Cycle) Cycle { return c.finish(now) })
	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownIntent, in)
	}
}

func reduceCreate(s State, in CreateCycle, now time.Time) (State, error) {
	if _, ok := s.Active(); ok {
		return s, ErrCycleAlreadyActive
	}
	for _, c := range s.Cycles {
		if c.ID == in.ID {
			return s, ErrDuplicateCycleID
		}
	}

	cycle, err := newCycle(in.ID, in.Task, in.MinutesAmount, now)
	if err != nil {
		return s, err
	}

	cycles := make([]Cycle, len(s.Cycles), len(s.Cycles)+1)
	copy(cycles, s.Cycles)

	return State{
		Cycles:         append(cycles, cycle),
		ActiveCycleID:  cycle.ID,
		ElapsedSeconds: 0,
	}, nil
}

func reduceTerminal(s State, cycleID string, stamp func(Cycle) Cycle) (State, error) {
	active, ok := s.Active()
	if !ok || (cycleID != "" && cycleID != active.ID) {
		return s, ErrNoActiveCycle
	}

	cycles := make([]Cycle, len(s.Cycles))
	for i, c := range s.Cycles {
		if c.ID == active.ID {
			c = stamp(c)
		}
		cycles[i] = c
	}

	return State{
		Cycles:         cycles,
		ActiveCycleID:  "",
		ElapsedSeconds: s.ElapsedSeconds,
	}, nil
}
