// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/sidneifjr/ignite-timer/internal/config"
	"github.com/sidneifjr/ignite-timer/internal/domain"
	"github.com/sidneifjr/ignite-timer/internal/event"
	"github.com/sidneifjr/ignite-timer/internal/logging"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg    *config.NotificationConfig
	send   func(title, message string) error
	logger *logging.Logger
}

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Notifier{
		cfg:    cfg,
		send:   func(title, message string) error { return beeep.Notify(title, message, "") },
		logger: logger.WithComponent("notifier"),
	}
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	return n.send(title, message)
}

// NotifyCycleFinished announces a cycle that ran to completion.
func (n *Notifier) NotifyCycleFinished(c domain.Cycle) error {
	title := "🔥 Cycle finished!"
	message := fmt.Sprintf("%s: %d minutes of focus done.", c.Task, c.MinutesAmount)
	return n.Notify(title, message)
}

// Subscribe notifies on every cycle.finished event published on bus and
// returns the subscription ID.
func (n *Notifier) Subscribe(bus *event.Bus) string {
	return bus.Subscribe(event.TypeCycleFinished, func(e event.Event) {
		finished, ok := e.(event.CycleFinishedEvent)
		if !ok {
			return
		}
		if err := n.NotifyCycleFinished(finished.Cycle); err != nil {
			n.logger.Warn("failed to send notification", "cycle_id", finished.Cycle.ID, "error", err)
		}
	})
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}
