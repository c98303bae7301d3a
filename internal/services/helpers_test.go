package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/sidneifjr/ignite-timer/internal/ports"
)

var t0 = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: t0} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// manualScheduler runs jobs only when Fire is called. It records the
// order in which tickets are acquired and cancelled.
type manualScheduler struct {
	mu      sync.Mutex
	next    int
	jobs    map[int]func()
	journal []string
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{jobs: make(map[int]func())}
}

type manualTicket struct {
	s    *manualScheduler
	id   int
	once sync.Once
}

func (t *manualTicket) Cancel() {
	t.once.Do(func() {
		t.s.mu.Lock()
		delete(t.s.jobs, t.id)
		t.s.journal = append(t.s.journal, "cancel")
		t.s.mu.Unlock()
	})
}

func (s *manualScheduler) Every(_ time.Duration, fn func()) (ports.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.jobs[s.next] = fn
	s.journal = append(s.journal, "acquire")
	return &manualTicket{s: s, id: s.next}, nil
}

func (s *manualScheduler) Stop() {}

// Fire runs every registered job once.
func (s *manualScheduler) Fire() {
	s.mu.Lock()
	jobs := make([]func(), 0, len(s.jobs))
	for _, fn := range s.jobs {
		jobs = append(jobs, fn)
	}
	s.mu.Unlock()
	for _, fn := range jobs {
		fn()
	}
}

func (s *manualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *manualScheduler) Journal() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.journal...)
}

// sequentialIDs returns "c1", "c2", ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("c%d", n)
	}
}
