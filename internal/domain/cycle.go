// Package domain contains the core entities of the timer: cycles, the
// intents that move them through their lifecycle, and the pure reducer
// that applies those intents to the cycle history.
package domain

import (
	"errors"
	"strings"
	"time"
)

// Common domain errors.
var (
	ErrEmptyTask          = errors.New("task cannot be empty")
	ErrInvalidMinutes     = errors.New("minutes amount must be a positive integer")
	ErrInvalidCycleID     = errors.New("invalid cycle ID")
	ErrDuplicateCycleID   = errors.New("cycle ID already exists")
	ErrCycleAlreadyActive = errors.New("a cycle is already active")
	ErrNoActiveCycle      = errors.New("no active cycle")
	ErrUnknownIntent      = errors.New("unknown intent")
	ErrCycleNotFound      = errors.New("cycle not found")
)

// CycleStatus represents where a cycle is in its lifecycle.
type CycleStatus string

const (
	CycleStatusInProgress  CycleStatus = "in_progress"
	CycleStatusInterrupted CycleStatus = "interrupted"
	CycleStatusFinished    CycleStatus = "finished"
)

// Cycle is one timed work session with a task label and duration.
type Cycle struct {
	ID              string
	Task            string
	MinutesAmount   int
	StartDate       time.Time
	InterruptedDate *time.Time
	FinishedDate    *time.Time
}

// newCycle builds an active cycle after validating its fields.
func newCycle(id, task string, minutesAmount int, now time.Time) (Cycle, error) {
	if id == "" {
		return Cycle{}, ErrInvalidCycleID
	}
	task = strings.TrimSpace(task)
	if task == "" {
		return Cycle{}, ErrEmptyTask
	}
	if minutesAmount <= 0 {
		return Cycle{}, ErrInvalidMinutes
	}
	return Cycle{
		ID:            id,
		Task:          task,
		MinutesAmount: minutesAmount,
		StartDate:     now,
	}, nil
}

// IsActive returns true if the cycle has reached neither terminal state.
func (c Cycle) IsActive() bool {
	return c.InterruptedDate == nil && c.FinishedDate == nil
}

// Status returns the lifecycle status derived from the terminal timestamps.
func (c Cycle) Status() CycleStatus {
	switch {
	case c.FinishedDate != nil:
		return CycleStatusFinished
	case c.InterruptedDate != nil:
		return CycleStatusInterrupted
	default:
		return CycleStatusInProgress
	}
}

// TargetSeconds is the duration of the cycle in seconds.
func (c Cycle) TargetSeconds() int {
	return c.MinutesAmount * 60
}

// EndDate returns the terminal timestamp, if any.
func (c Cycle) EndDate() (time.Time, bool) {
	switch {
	case c.FinishedDate != nil:
		return *c.FinishedDate, true
	case c.InterruptedDate != nil:
		return *c.InterruptedDate, true
	}
	return time.Time{}, false
}

// interrupt returns a copy of the cycle stamped as interrupted.
func (c Cycle) interrupt(now time.Time) Cycle {
	c.InterruptedDate = &now
	return c
}

// finish returns a copy of the cycle stamped as finished.
func (c Cycle) finish(now time.Time) Cycle {
	c.FinishedDate = &now
	return c
}

// GetStatusLabel returns a human-readable label for the cycle status.
func GetStatusLabel(s CycleStatus) string {
	switch s {
	case CycleStatusInProgress:
		return "In progress"
	case CycleStatusInterrupted:
		return "Interrupted"
	case CycleStatusFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}
