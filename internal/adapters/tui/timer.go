package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"github.com/sidneifjr/ignite-timer/internal/ports"
)

// ErrNotTerminal is returned by Run when stdout is not a terminal.
var ErrNotTerminal = errors.New("the timer needs an interactive terminal")

// Timer implements the ports.Timer interface using Bubbletea.
type Timer struct {
	opts        Options
	programOpts []tea.ProgramOption
	output      *os.File
}

// Ensure Timer implements ports.Timer.
var _ ports.Timer = (*Timer)(nil)

// NewTimer creates a new TUI timer adapter.
func NewTimer(opts Options, programOpts ...tea.ProgramOption) *Timer {
	return &Timer{
		opts:        opts,
		programOpts: programOpts,
		output:      os.Stdout,
	}
}

// Run starts the timer interface and blocks until the user quits or ctx
// is cancelled.
func (t *Timer) Run(ctx context.Context) error {
	if !IsInteractive(t.output) {
		return ErrNotTerminal
	}

	opts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}, t.programOpts...)

	program := tea.NewProgram(NewModel(t.opts), opts...)
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(f.Fd())
}

// TerminalWidth returns the width of f, or fallback when it is not a
// terminal.
func TerminalWidth(f *os.File, fallback int) int {
	if !IsInteractive(f) {
		return fallback
	}
	w, _, err := term.GetSize(f.Fd())
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
