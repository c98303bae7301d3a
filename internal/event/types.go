// Package event provides a synchronous pub-sub bus that carries cycle
// lifecycle events from the store to the countdown driver, the run
// journal, the notifier and the logger.
package event

import (
	"time"

	"github.com/sidneifjr/ignite-timer/internal/domain"
)

// Event types follow the "category.action" convention.
const (
	TypeCycleCreated     = "cycle.created"
	TypeCycleInterrupted = "cycle.interrupted"
	TypeCycleFinished    = "cycle.finished"
	TypeCycleElapsed     = "cycle.elapsed"
)

// Event is the interface that all events implement.
type Event interface {
	EventType() string
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string, at time.Time) baseEvent {
	return baseEvent{eventType: eventType, timestamp: at}
}

// CycleCreatedEvent is emitted when a new cycle becomes active.
type CycleCreatedEvent struct {
	baseEvent
	Cycle domain.Cycle
}

// NewCycleCreatedEvent creates a CycleCreatedEvent.
func NewCycleCreatedEvent(c domain.Cycle) CycleCreatedEvent {
	return CycleCreatedEvent{baseEvent: newBaseEvent(TypeCycleCreated, c.StartDate), Cycle: c}
}

// CycleInterruptedEvent is emitted when the active cycle is cancelled.
type CycleInterruptedEvent struct {
	baseEvent
	Cycle          domain.Cycle
	ElapsedSeconds int
}

// NewCycleInterruptedEvent creates a CycleInterruptedEvent.
func NewCycleInterruptedEvent(c domain.Cycle, elapsed int) CycleInterruptedEvent {
	at := time.Now()
	if c.InterruptedDate != nil {
		at = *c.InterruptedDate
	}
	return CycleInterruptedEvent{
		baseEvent:      newBaseEvent(TypeCycleInterrupted, at),
		Cycle:          c,
		ElapsedSeconds: elapsed,
	}
}

// CycleFinishedEvent is emitted when the active cycle reaches its target.
type CycleFinishedEvent struct {
	baseEvent
	Cycle domain.Cycle
}

// NewCycleFinishedEvent creates a CycleFinishedEvent.
func NewCycleFinishedEvent(c domain.Cycle) CycleFinishedEvent {
	at := time.Now()
	if c.FinishedDate != nil {
		at = *c.FinishedDate
	}
	return CycleFinishedEvent{baseEvent: newBaseEvent(TypeCycleFinished, at), Cycle: c}
}

// CycleElapsedEvent is emitted when the elapsed-seconds counter changes.
type CycleElapsedEvent struct {
	baseEvent
	CycleID        string
	ElapsedSeconds int
	TargetSeconds  int
}

// NewCycleElapsedEvent creates a CycleElapsedEvent.
func NewCycleElapsedEvent(cycleID string, elapsed, target int) CycleElapsedEvent {
	return CycleElapsedEvent{
		baseEvent:      newBaseEvent(TypeCycleElapsed, time.Now()),
		CycleID:        cycleID,
		ElapsedSeconds: elapsed,
		TargetSeconds:  target,
	}
}
