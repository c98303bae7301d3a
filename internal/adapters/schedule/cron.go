// Package schedule provides the periodic job runner behind the countdown.
package schedule

import (
	"errors"
	"fmt"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/sidneifjr/ignite-timer/internal/logging"
	"github.com/sidneifjr/ignite-timer/internal/ports"
)

// ErrStopped is returned by Every after Stop.
var ErrStopped = errors.New("scheduler stopped")

// CronScheduler runs interval jobs on a robfig/cron runner. Overlapping
// runs of the same job are skipped.
type CronScheduler struct {
	mu      sync.Mutex
	cron    *rcron.Cron
	logger  *logging.Logger
	stopped bool
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler creates and starts a scheduler.
func NewCronScheduler(logger *logging.Logger) *CronScheduler {
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithComponent("scheduler")
	c := rcron.New(
		rcron.WithSeconds(),
		rcron.WithLogger(cronLogger{logger}),
	)
	c.Start()
	return &CronScheduler{cron: c, logger: logger}
}

// Every runs fn every interval until the returned ticket is cancelled.
// Intervals are rounded down to whole seconds, with a one second minimum.
func (s *CronScheduler) Every(interval time.Duration, fn func()) (ports.Ticket, error) {
	if fn == nil {
		return nil, fmt.Errorf("failed to schedule job: nil func")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}

	job := rcron.NewChain(
		rcron.SkipIfStillRunning(cronLogger{s.logger}),
		rcron.Recover(cronLogger{s.logger}),
	).Then(rcron.FuncJob(fn))

	id := s.cron.Schedule(rcron.Every(interval), job)
	s.logger.Debug("job scheduled", "entry_id", int(id), "interval", interval.String())
	return &cronTicket{scheduler: s, id: id}, nil
}

// Stop halts the runner and waits for running jobs to return.
func (s *CronScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	<-s.cron.Stop().Done()
}

// Entries returns the number of scheduled jobs.
func (s *CronScheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *CronScheduler) remove(id rcron.EntryID) {
	s.cron.Remove(id)
	s.logger.Debug("job removed", "entry_id", int(id))
}

type cronTicket struct {
	scheduler *CronScheduler
	id        rcron.EntryID
	once      sync.Once
}

// Cancel removes the job. Calling it more than once is a no-op.
func (t *cronTicket) Cancel() {
	t.once.Do(func() {
		t.scheduler.remove(t.id)
	})
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	l *logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Warn(msg, append(keysAndValues, "error", err)...)
}
