package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sidneifjr/ignite-timer/internal/adapters/notification"
	"github.com/sidneifjr/ignite-timer/internal/adapters/schedule"
	"github.com/sidneifjr/ignite-timer/internal/adapters/storage"
	"github.com/sidneifjr/ignite-timer/internal/config"
	"github.com/sidneifjr/ignite-timer/internal/event"
	"github.com/sidneifjr/ignite-timer/internal/logging"
	"github.com/sidneifjr/ignite-timer/internal/ports"
	"github.com/sidneifjr/ignite-timer/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config     *config.Config
	configPath string
	logger     *logging.Logger
	bus        *event.Bus
	store      *services.CycleStore
	scheduler  *schedule.CronScheduler
	countdown  *services.Countdown
	journal    ports.CycleJournal
	recorder   *services.JournalRecorder
	intake     *services.FormIntake
	notifier   *notification.Notifier
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices() error {
	path := configPath
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}
	app.configPath = path

	// Load configuration
	var loadErr error
	app.config, loadErr = config.Load(path)
	if loadErr != nil {
		// If config loading fails, use defaults
		app.config = config.DefaultConfig()
		dataDir, err := config.ExpandHome(app.config.Storage.DataDir)
		if err != nil {
			return err
		}
		app.config.Storage.DataDir = dataDir
	}
	if logLevel != "" {
		if !logging.IsValidLevel(logLevel) {
			return fmt.Errorf("invalid log level %q (valid: %v)", logLevel, logging.ValidLevels())
		}
		app.config.Logging.Level = logLevel
	}

	// Logging; the terminal belongs to the TUI
	if err := os.MkdirAll(app.config.LogDir(), 0750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logger, err := logging.NewLogger(app.config.LogDir(), app.config.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.logger = logger
	if loadErr != nil {
		app.logger.Warn("using default config", "path", path, "error", loadErr)
	}

	app.bus = event.NewBus(app.logger)
	app.store = services.NewCycleStore(app.bus, services.StoreOptions{Logger: app.logger})

	// The journal is in-memory and lives only as long as this process
	app.journal, err = storage.NewMemory()
	if err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}
	app.recorder = services.NewJournalRecorder(app.journal, app.logger)
	app.recorder.Attach(app.bus)

	app.notifier = notification.New(&app.config.Notifications, app.logger)
	app.notifier.Subscribe(app.bus)

	app.scheduler = schedule.NewCronScheduler(app.logger)
	app.countdown = services.NewCountdown(app.store, app.bus, app.scheduler, services.CountdownOptions{
		Interval: app.config.Cycle.TickInterval,
		Logger:   app.logger,
	})
	if err := app.countdown.Attach(); err != nil {
		return fmt.Errorf("failed to attach countdown: %w", err)
	}

	app.intake = services.NewFormIntake(app.store, services.Policy{
		MinMinutes: app.config.Cycle.MinMinutes,
		MaxMinutes: app.config.Cycle.MaxMinutes,
	}, app.journal)

	app.logger.Debug("services initialized", "config", path, "tick", app.config.Cycle.TickInterval.String())
	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if app.countdown != nil {
		app.countdown.Detach()
	}
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.recorder != nil {
		app.recorder.Detach()
	}

	var errs []error
	if app.journal != nil {
		if err := app.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close journal: %w", err))
		}
	}
	if app.logger != nil {
		if err := app.logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close logger: %w", err))
		}
	}
	app = appDeps{}
	return errors.Join(errs...)
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}
