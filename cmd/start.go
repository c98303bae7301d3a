package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"

	"github.com/sidneifjr/ignite-timer/internal/adapters/tui"
	"github.com/sidneifjr/ignite-timer/internal/event"
	"github.com/sidneifjr/ignite-timer/internal/services"
)

var (
	startTask    string
	startMinutes string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run a focus cycle without the full-screen timer",
	Long: `Start a focus cycle and print its progress until it finishes.
Press Ctrl+C to interrupt the cycle.`,
	Example: `  ignite start --task "Write spec" --minutes 25
  ignite start -t review -m 5`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVarP(&startTask, "task", "t", "", "What you will work on")
	startCmd.Flags().StringVarP(&startMinutes, "minutes", "m", "", "Cycle duration in minutes")
}

func runStart(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	updates := make(chan event.CycleElapsedEvent, 8)
	outcome := make(chan event.Event, 2)

	var cycleID string
	elapsedSub := app.bus.Subscribe(event.TypeCycleElapsed, func(e event.Event) {
		el, ok := e.(event.CycleElapsedEvent)
		if !ok {
			return
		}
		select {
		case updates <- el:
		default:
		}
	})
	finishedSub := app.bus.Subscribe(event.TypeCycleFinished, func(e event.Event) {
		select {
		case outcome <- e:
		default:
		}
	})
	defer app.bus.Unsubscribe(elapsedSub)
	defer app.bus.Unsubscribe(finishedSub)

	id, err := app.intake.Submit(services.RawCycleInput{Task: startTask, MinutesAmount: startMinutes})
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return errors.New(fieldMessages(verr.Fields))
		}
		return fmt.Errorf("failed to start cycle: %w", err)
	}
	cycleID = id

	active, _ := app.store.ActiveCycle()
	fmt.Fprintf(out, "🔥 %s for %s (Ctrl+C to interrupt)\n", active.Task, minutesText(active.MinutesAmount))

	ctx := setupSignalHandler()
	bar := newProgressBar(tui.TerminalWidth(os.Stdout, 60))
	interactive := tui.IsInteractive(os.Stdout) && out == io.Writer(os.Stdout)

	for {
		select {
		case el := <-updates:
			if el.CycleID == cycleID {
				printProgress(out, bar, el, interactive)
			}
		case e := <-outcome:
			finished, ok := e.(event.CycleFinishedEvent)
			if !ok || finished.Cycle.ID != cycleID {
				continue
			}
			if interactive {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "✓ Cycle finished: %s (%s)\n", finished.Cycle.Task, minutesText(finished.Cycle.MinutesAmount))
			printJournalSummary(cmd)
			return nil
		case <-ctx.Done():
			if interactive {
				fmt.Fprintln(out)
			}
			if app.store.InterruptCycle(cycleID) {
				elapsed := time.Duration(app.store.ElapsedSeconds()) * time.Second
				fmt.Fprintf(out, "✗ Cycle interrupted after %s\n", tui.FormatDuration(elapsed))
			}
			printJournalSummary(cmd)
			return nil
		}
	}
}

func newProgressBar(termWidth int) progress.Model {
	bar := progress.New(progress.WithGradient(app.config.Theme.ProgressGradStart, app.config.Theme.ProgressGradEnd))
	bar.Width = max(termWidth-16, 10)
	return bar
}

func printProgress(out io.Writer, bar progress.Model, el event.CycleElapsedEvent, interactive bool) {
	remaining := time.Duration(el.TargetSeconds-el.ElapsedSeconds) * time.Second
	ratio := 0.0
	if el.TargetSeconds > 0 {
		ratio = float64(el.ElapsedSeconds) / float64(el.TargetSeconds)
	}
	line := fmt.Sprintf("%s %s", tui.FormatDuration(remaining), bar.ViewAs(ratio))
	if interactive {
		fmt.Fprintf(out, "\r%s", line)
		return
	}
	fmt.Fprintln(out, line)
}

func printJournalSummary(cmd *cobra.Command) {
	summary, err := app.journal.Summary(cmd.Context())
	if err != nil || summary.Total == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %d cycles this run · %s focused\n",
		summary.Total, summary.FocusedTime.Round(time.Second))
}

// fieldMessages joins validation messages in a stable order.
func fieldMessages(fields services.FieldErrors) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return strings.Join(msgs, "; ")
}

func minutesText(n int) string {
	if n == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", n)
}

