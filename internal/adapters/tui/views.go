package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sidneifjr/ignite-timer/internal/domain"
	"github.com/sidneifjr/ignite-timer/internal/services"
)

// History column widths.
const (
	colTask     = 28
	colDuration = 12
	colStarted  = 18
	colStatus   = 12
)

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.viewHeader())

	switch m.screen {
	case screenHistory:
		sections = m.viewHistory(sections)
	default:
		sections = m.viewHome(sections)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	current := lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color(m.theme.ColorRunning))
	other := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	timerTab, historyTab := current.Render("Timer"), other.Render("History")
	if m.screen == screenHistory {
		timerTab, historyTab = other.Render("Timer"), current.Render(m.theme.IconHistory+" History")
	}

	header := fmt.Sprintf("%s  %s  %s", titleStyle.Render(m.theme.IconApp+" ignite"), timerTab, historyTab)
	return lipgloss.NewStyle().MarginBottom(1).Render(header)
}

func (m Model) viewHome(sections []string) []string {
	taskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorTask))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorError))

	active, running := m.active()

	// Form line; read-only while a cycle runs
	if running {
		line := fmt.Sprintf("I will work on %s for %s.",
			lipgloss.NewStyle().Bold(true).Render(active.Task), minutesLabel(active.MinutesAmount))
		sections = append(sections, taskStyle.Render(m.theme.IconTask+" "+line))
	} else {
		line := fmt.Sprintf("I will work on %s for %s minutes.", m.taskInput.View(), m.minutesInput.View())
		sections = append(sections, taskStyle.Render(line))

		for _, field := range []string{services.FieldTask, services.FieldMinutesAmount} {
			if msg, ok := m.form.Errors[field]; ok {
				sections = append(sections, errStyle.Render(msg))
			}
		}
		if m.submitErr != "" {
			sections = append(sections, errStyle.Render(m.submitErr))
		}
		if len(m.suggestions) > 0 && m.focus == focusTask {
			sections = append(sections, helpStyle.Render("Earlier: "+strings.Join(m.suggestions, " · ")+"  (ctrl+n)"))
		}
	}

	// Countdown
	remaining := time.Duration(m.state.RemainingSeconds()) * time.Second
	timerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorIdle))
	if running {
		timerStyle = timerStyle.Foreground(lipgloss.Color(m.theme.ColorRunning))
	}
	sections = append(sections, "")
	sections = append(sections, renderBigTime(FormatDuration(remaining), timerStyle, m.width))

	if running {
		pbar := progress.New(progress.WithGradient(m.theme.ProgressGradStart, m.theme.ProgressGradEnd))
		pbar.Width = max(m.width-4, 10)
		sections = append(sections, "")
		sections = append(sections, pbar.ViewAs(m.state.Progress()))
	}

	// Help
	sections = append(sections, "")
	if running {
		sections = append(sections, helpStyle.Render("[x] interrupt  ctrl+t history  [q]uit"))
		return sections
	}

	start := helpStyle.Render("[enter] start")
	if !m.form.Valid() {
		start = helpStyle.Faint(true).Render("[enter] start")
	}
	sections = append(sections, start+helpStyle.Render("  tab next field  ctrl+t history  ctrl+c quit"))
	return sections
}

func (m Model) viewHistory(sections []string) []string {
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	headStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))

	sections = append(sections, headStyle.Render("My history"))
	sections = append(sections, "")

	cycles := m.state.Cycles
	if len(cycles) == 0 {
		sections = append(sections, helpStyle.Render("No cycles yet. Start one from the timer."))
	} else {
		rows := []string{m.historyRow(headStyle, "Task", "Duration", "Started", headStyle.Render("Status"))}
		now := m.now()
		rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorTask))
		for i := len(cycles) - 1; i >= 0; i-- {
			c := cycles[i]
			rows = append(rows, m.historyRow(rowStyle,
				truncate(c.Task, colTask-2),
				minutesLabel(c.MinutesAmount),
				humanize.RelTime(c.StartDate, now, "ago", "from now"),
				m.statusBadge(c.Status()),
			))
		}
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	if m.summary != nil && m.summary.Total > 0 {
		sections = append(sections, "")
		sections = append(sections, helpStyle.Render(summaryLine(m.summary.Total, m.summary.Finished,
			m.summary.Interrupted, m.summary.FocusedTime)))
	}

	sections = append(sections, "")
	sections = append(sections, helpStyle.Render("[esc] back  ctrl+c quit"))
	return sections
}

func (m Model) historyRow(style lipgloss.Style, task, duration, started, status string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		style.Width(colTask).Render(task),
		style.Width(colDuration).Render(duration),
		style.Width(colStarted).Render(started),
		lipgloss.NewStyle().Width(colStatus).Render(status),
	)
}

func (m Model) statusBadge(s domain.CycleStatus) string {
	color := m.theme.ColorIdle
	switch s {
	case domain.CycleStatusFinished:
		color = m.theme.ColorFinished
	case domain.CycleStatusInterrupted:
		color = m.theme.ColorInterrupted
	case domain.CycleStatusInProgress:
		color = m.theme.ColorRunning
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("● " + domain.GetStatusLabel(s))
}

func summaryLine(total, finished, interrupted int, focused time.Duration) string {
	return fmt.Sprintf("%d cycles · %d finished · %d interrupted · %s focused",
		total, finished, interrupted, focused.Round(time.Second))
}

func minutesLabel(n int) string {
	if n == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
