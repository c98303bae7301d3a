// Package cmd provides the CLI commands for the ignite application.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidneifjr/ignite-timer/internal/adapters/tui"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	configPath string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ignite",
	Short: "ignite - a focus cycle timer for the terminal",
	Long: `ignite runs timed focus cycles. Name a task, pick a duration and
work until the countdown reaches zero, or interrupt it early.

Run "ignite" with no arguments to open the interactive timer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: runTimer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: ~/.ignite/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")

	// Set version - cobra handles --version automatically
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("ignite\nVersion: {{.Version}}\n")

	// Add subcommands
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(configCmd)
}

// runTimer opens the full-screen timer.
func runTimer(cmd *cobra.Command, args []string) error {
	ctx := setupSignalHandler()

	timer := tui.NewTimer(tui.Options{
		Store:   app.store,
		Intake:  app.intake,
		Journal: app.journal,
		Theme:   &app.config.Theme,
	})

	if err := timer.Run(ctx); err != nil {
		if errors.Is(err, tui.ErrNotTerminal) {
			return fmt.Errorf("%w (use \"ignite start\" for a headless cycle)", err)
		}
		return fmt.Errorf("timer error: %w", err)
	}
	return nil
}
