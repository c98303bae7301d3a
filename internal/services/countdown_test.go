package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidneifjr/ignite-timer/internal/domain"
	"github.com/sidneifjr/ignite-timer/internal/event"
)

type countdownFixture struct {
	clock *fakeClock
	sched *manualScheduler
	store *CycleStore
	drv   *Countdown
}

func newCountdownFixture(t *testing.T) *countdownFixture {
	t.Helper()
	clock := newFakeClock()
	sched := newManualScheduler()
	store := newTestStore(clock)
	drv := NewCountdown(store, store.Bus(), sched, CountdownOptions{Now: clock.Now})
	require.NoError(t, drv.Attach())
	t.Cleanup(drv.Detach)
	return &countdownFixture{clock: clock, sched: sched, store: store, drv: drv}
}

// run advances the clock one second at a time, firing the scheduler.
func (f *countdownFixture) run(seconds int) {
	for i := 0; i < seconds; i++ {
		f.clock.Advance(time.Second)
		f.sched.Fire()
	}
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "idle"},
		{PhaseRunning, "running"},
		{PhaseCompleted, "completed"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestCountdown_FinishesAtTarget(t *testing.T) {
	f := newCountdownFixture(t)

	id, err := f.store.CreateCycle("Write spec", 5)
	require.NoError(t, err)
	assert.Equal(t, PhaseRunning, f.drv.Phase())
	assert.Equal(t, id, f.drv.CycleID())
	assert.Equal(t, 1, f.sched.Active())

	f.run(299)
	_, ok := f.store.ActiveCycle()
	require.True(t, ok)
	assert.Equal(t, 299, f.store.ElapsedSeconds())

	f.run(1)
	_, ok = f.store.ActiveCycle()
	assert.False(t, ok, "active pointer cleared")

	cycles := f.store.Cycles()
	require.Len(t, cycles, 1)
	require.NotNil(t, cycles[0].FinishedDate)
	assert.Nil(t, cycles[0].InterruptedDate)
	assert.Equal(t, 300, f.store.ElapsedSeconds())
	assert.Equal(t, PhaseIdle, f.drv.Phase())
	assert.Equal(t, 0, f.sched.Active(), "ticket released")
}

func TestCountdown_FinishedEventFiresOnce(t *testing.T) {
	f := newCountdownFixture(t)

	finished := 0
	f.store.Bus().Subscribe(event.TypeCycleFinished, func(event.Event) { finished++ })

	_, err := f.store.CreateCycle("Write spec", 5)
	require.NoError(t, err)

	// A late wake-up well past the end still finishes exactly once.
	f.clock.Advance(10 * time.Minute)
	f.sched.Fire()
	f.drv.Tick()
	f.sched.Fire()

	assert.Equal(t, 1, finished)
	assert.Equal(t, 300, f.store.ElapsedSeconds())
}

func TestCountdown_ElapsedNeverExceedsTarget(t *testing.T) {
	f := newCountdownFixture(t)

	var max int
	f.store.Bus().Subscribe(event.TypeCycleElapsed, func(e event.Event) {
		el := e.(event.CycleElapsedEvent)
		if el.ElapsedSeconds > max {
			max = el.ElapsedSeconds
		}
		assert.LessOrEqual(t, el.ElapsedSeconds, el.TargetSeconds)
	})

	_, err := f.store.CreateCycle("Short", 1)
	require.NoError(t, err)
	f.clock.Advance(59 * time.Second)
	f.sched.Fire()
	f.clock.Advance(45 * time.Second)
	f.sched.Fire()

	assert.Equal(t, 60, max)
}

func TestCountdown_InterruptStopsElapsed(t *testing.T) {
	f := newCountdownFixture(t)

	_, err := f.store.CreateCycle("Write spec", 5)
	require.NoError(t, err)
	f.run(10)
	require.True(t, f.store.InterruptActiveCycle())

	assert.Equal(t, 0, f.sched.Active())
	assert.Equal(t, PhaseIdle, f.drv.Phase())

	f.run(30)
	f.drv.Tick()
	assert.Equal(t, 10, f.store.ElapsedSeconds())

	cycles := f.store.Cycles()
	require.Len(t, cycles, 1)
	require.NotNil(t, cycles[0].InterruptedDate)
	assert.Nil(t, cycles[0].FinishedDate)
}

func TestCountdown_CreateWhileActiveKeepsFirst(t *testing.T) {
	f := newCountdownFixture(t)

	a, err := f.store.CreateCycle("A", 5)
	require.NoError(t, err)
	f.run(5)

	_, err = f.store.CreateCycle("B", 5)
	assert.ErrorIs(t, err, domain.ErrCycleAlreadyActive)

	f.run(5)
	assert.Equal(t, a, f.drv.CycleID())
	assert.Equal(t, 10, f.store.ElapsedSeconds())
	assert.Equal(t, 1, f.sched.Active())
}

func TestCountdown_ReplacementCancelsBeforeAcquire(t *testing.T) {
	f := newCountdownFixture(t)

	_, err := f.store.CreateCycle("A", 5)
	require.NoError(t, err)
	f.run(3)
	require.True(t, f.store.InterruptActiveCycle())

	b, err := f.store.CreateCycle("B", 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"acquire", "cancel", "acquire"}, f.sched.Journal())
	assert.Equal(t, b, f.drv.CycleID())
	assert.Equal(t, 0, f.store.ElapsedSeconds(), "B starts from zero")

	f.run(2)
	assert.Equal(t, 2, f.store.ElapsedSeconds())
}

func TestCountdown_AttachAnchorsExistingCycle(t *testing.T) {
	clock := newFakeClock()
	sched := newManualScheduler()
	store := newTestStore(clock)

	_, err := store.CreateCycle("Already running", 5)
	require.NoError(t, err)
	clock.Advance(42 * time.Second)

	drv := NewCountdown(store, store.Bus(), sched, CountdownOptions{Now: clock.Now})
	require.NoError(t, drv.Attach())
	defer drv.Detach()

	assert.Equal(t, PhaseRunning, drv.Phase())
	assert.Equal(t, 42, store.ElapsedSeconds(), "derived from the start date")

	require.NoError(t, drv.Attach())
	assert.Equal(t, 1, sched.Active(), "re-attach keeps a single ticket")
}

func TestCountdown_DetachReleasesTicket(t *testing.T) {
	f := newCountdownFixture(t)

	_, err := f.store.CreateCycle("A", 5)
	require.NoError(t, err)
	f.drv.Detach()

	assert.Equal(t, 0, f.sched.Active())
	assert.Equal(t, PhaseIdle, f.drv.Phase())
	assert.Equal(t, 0, f.store.Bus().SubscriptionCount())
}

func TestCountdown_LateCreatedEventKeepsLiveCycle(t *testing.T) {
	clock := newFakeClock()
	sched := newManualScheduler()
	store := newTestStore(clock)

	// Registered before the driver, so it sees cycle.created first and
	// replaces the cycle before the driver hears about the original.
	var replacement string
	store.Bus().Subscribe(event.TypeCycleCreated, func(e event.Event) {
		created, ok := e.(event.CycleCreatedEvent)
		if !ok || replacement != "" {
			return
		}
		replacement = "pending"
		require.True(t, store.InterruptCycle(created.Cycle.ID))
		id, err := store.CreateCycle("B", 5)
		require.NoError(t, err)
		replacement = id
	})

	drv := NewCountdown(store, store.Bus(), sched, CountdownOptions{Now: clock.Now})
	require.NoError(t, drv.Attach())
	defer drv.Detach()

	_, err := store.CreateCycle("A", 5)
	require.NoError(t, err)

	active, ok := store.ActiveCycle()
	require.True(t, ok)
	assert.Equal(t, replacement, active.ID)
	assert.Equal(t, replacement, drv.CycleID())
	assert.Equal(t, 1, sched.Active())

	for i := 0; i < 300; i++ {
		clock.Advance(time.Second)
		sched.Fire()
	}
	_, ok = store.ActiveCycle()
	assert.False(t, ok, "the replacement finishes on its own")
	assert.Equal(t, PhaseIdle, drv.Phase())
}

// vanishingStore reports its cycle as active until ended, without
// publishing anything.
type vanishingStore struct {
	state domain.State
	ended bool
}

func (s *vanishingStore) Snapshot() domain.State { return s.state }

func (s *vanishingStore) RecordElapsed(cycleID string, seconds int) bool {
	return !s.ended && cycleID == s.state.ActiveCycleID
}

func (s *vanishingStore) FinishCycle(string) bool { return false }

func TestCountdown_ReleasesWhenCycleEndsUnannounced(t *testing.T) {
	clock := newFakeClock()
	sched := newManualScheduler()
	store := &vanishingStore{state: domain.State{
		Cycles:        []domain.Cycle{{ID: "c1", Task: "A", MinutesAmount: 5, StartDate: clock.Now()}},
		ActiveCycleID: "c1",
	}}

	drv := NewCountdown(store, event.NewBus(nil), sched, CountdownOptions{Now: clock.Now})
	require.NoError(t, drv.Attach())
	defer drv.Detach()
	require.Equal(t, PhaseRunning, drv.Phase())

	store.ended = true
	clock.Advance(time.Second)
	sched.Fire()

	assert.Equal(t, PhaseIdle, drv.Phase())
	assert.Equal(t, "", drv.CycleID())
	assert.Equal(t, 0, sched.Active())
}
