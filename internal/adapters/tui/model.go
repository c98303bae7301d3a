// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sidneifjr/ignite-timer/internal/config"
	"github.com/sidneifjr/ignite-timer/internal/domain"
	"github.com/sidneifjr/ignite-timer/internal/ports"
	"github.com/sidneifjr/ignite-timer/internal/services"
)

// appTitle is the window title while no cycle runs.
const appTitle = "ignite"

const suggestionLimit = 3

// Store is the part of the cycle store the view drives.
type Store interface {
	ports.CycleReader
	InterruptActiveCycle() bool
}

// SummaryReader provides the run summary shown under the history.
type SummaryReader interface {
	Summary(ctx context.Context) (*ports.JournalSummary, error)
}

// Options wires the model to the application.
type Options struct {
	Store   Store
	Intake  *services.FormIntake
	Journal SummaryReader
	Theme   *config.ThemeConfig
	Now     func() time.Time
}

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

type screen int

const (
	screenHome screen = iota
	screenHistory
)

const (
	focusTask = iota
	focusMinutes
)

// tickMsg is sent on every timer tick.
type tickMsg time.Time

// stateMsg carries a store snapshot fetched asynchronously.
type stateMsg struct {
	state domain.State
}

type summaryMsg struct {
	summary *ports.JournalSummary
}

type suggestionsMsg struct {
	query string
	items []string
}

// Model represents the TUI state.
type Model struct {
	store   Store
	intake  *services.FormIntake
	journal SummaryReader
	form    *services.Form

	taskInput    textinput.Model
	minutesInput textinput.Model
	focus        int

	screen        screen
	state         domain.State
	summary       *ports.JournalSummary
	suggestions   []string
	suggestionIdx int
	submitErr     string
	windowTitle   string

	width  int
	height int
	theme  config.ThemeConfig
	now    func() time.Time
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	task := textinput.New()
	task.Placeholder = "Give your project a name"
	task.CharLimit = 120
	task.Width = 32
	task.Prompt = ""

	minutes := textinput.New()
	minutes.Placeholder = "00"
	minutes.CharLimit = 2
	minutes.Width = 3
	minutes.Prompt = ""

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		store:         opts.Store,
		intake:        opts.Intake,
		journal:       opts.Journal,
		form:          services.NewForm(opts.Intake),
		taskInput:     task,
		minutesInput:  minutes,
		state:         opts.Store.Snapshot(),
		suggestionIdx: -1,
		theme:         resolveTheme(opts.Theme),
		now:           now,
		windowTitle:   appTitle,
	}
	m.syncFocus()
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		textinput.Blink,
		tea.SetWindowTitle(m.windowTitle),
		fetchSummaryCmd(m.journal),
	)
}

// fetchStateCmd returns a tea.Cmd that fetches state asynchronously.
func fetchStateCmd(store ports.CycleReader) tea.Cmd {
	return func() tea.Msg {
		return stateMsg{state: store.Snapshot()}
	}
}

func fetchSummaryCmd(journal SummaryReader) tea.Cmd {
	if journal == nil {
		return nil
	}
	return func() tea.Msg {
		s, err := journal.Summary(context.Background())
		if err != nil {
			return summaryMsg{}
		}
		return summaryMsg{summary: s}
	}
}

func suggestCmd(intake *services.FormIntake, query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if intake == nil || query == "" {
		return func() tea.Msg { return suggestionsMsg{query: query} }
	}
	return func() tea.Msg {
		items, err := intake.Suggestions(context.Background(), query, suggestionLimit+1)
		if err != nil {
			return suggestionsMsg{query: query}
		}
		// The exact text already typed is not a suggestion.
		out := items[:0:0]
		for _, it := range items {
			if !strings.EqualFold(it, query) && len(out) < suggestionLimit {
				out = append(out, it)
			}
		}
		return suggestionsMsg{query: query, items: out}
	}
}

func (m Model) active() (domain.Cycle, bool) {
	return m.state.Active()
}

// syncFocus disables both inputs while a cycle runs.
func (m *Model) syncFocus() {
	m.taskInput.Blur()
	m.minutesInput.Blur()
	if _, running := m.active(); running {
		return
	}
	if m.focus == focusMinutes {
		m.minutesInput.Focus()
	} else {
		m.taskInput.Focus()
	}
}

// titleText mirrors the countdown in the terminal title.
func (m Model) titleText() string {
	active, ok := m.active()
	if !ok {
		return appTitle
	}
	remaining := time.Duration(m.state.RemainingSeconds()) * time.Second
	return fmt.Sprintf("%s %s", FormatDuration(remaining), active.Task)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(tickCmd(), fetchStateCmd(m.store))

	case stateMsg:
		return m.applyState(msg.state)

	case summaryMsg:
		if msg.summary != nil {
			m.summary = msg.summary
		}
		return m, nil

	case suggestionsMsg:
		if msg.query == strings.TrimSpace(m.taskInput.Value()) {
			m.suggestions = msg.items
			m.suggestionIdx = -1
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.focus == focusMinutes {
		m.minutesInput, cmd = m.minutesInput.Update(msg)
	} else {
		m.taskInput, cmd = m.taskInput.Update(msg)
	}
	return m, cmd
}

func (m Model) applyState(s domain.State) (tea.Model, tea.Cmd) {
	_, wasActive := m.active()
	m.state = s
	_, isActive := m.active()

	var cmds []tea.Cmd
	if wasActive != isActive {
		m.syncFocus()
		cmds = append(cmds, fetchSummaryCmd(m.journal))
	}
	if title := m.titleText(); title != m.windowTitle {
		m.windowTitle = title
		cmds = append(cmds, tea.SetWindowTitle(title))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		if m.screen == screenHistory {
			m.screen = screenHome
			return m, nil
		}
		m.screen = screenHistory
		return m, fetchSummaryCmd(m.journal)
	}

	if m.screen == screenHistory {
		switch msg.String() {
		case "esc", "q":
			m.screen = screenHome
		}
		return m, nil
	}

	if _, running := m.active(); running {
		switch msg.String() {
		case "x", "esc":
			if m.store.InterruptActiveCycle() {
				return m, fetchStateCmd(m.store)
			}
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		if m.focus == focusTask {
			m.focus = focusMinutes
		} else {
			m.focus = focusTask
		}
		m.syncFocus()
		return m, nil
	case "ctrl+n":
		if len(m.suggestions) > 0 {
			m.suggestionIdx = (m.suggestionIdx + 1) % len(m.suggestions)
			m.taskInput.SetValue(m.suggestions[m.suggestionIdx])
			m.taskInput.CursorEnd()
			m.form.Task = m.taskInput.Value()
			delete(m.form.Errors, services.FieldTask)
		}
		return m, nil
	case "enter":
		return m.submit()
	}

	prevTask := m.taskInput.Value()
	var cmd tea.Cmd
	if m.focus == focusMinutes {
		m.minutesInput, cmd = m.minutesInput.Update(msg)
		delete(m.form.Errors, services.FieldMinutesAmount)
	} else {
		m.taskInput, cmd = m.taskInput.Update(msg)
		delete(m.form.Errors, services.FieldTask)
	}
	m.form.Task = m.taskInput.Value()
	m.form.MinutesAmount = m.minutesInput.Value()

	cmds := []tea.Cmd{cmd}
	if m.taskInput.Value() != prevTask {
		cmds = append(cmds, suggestCmd(m.intake, m.taskInput.Value()))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.form.Task = m.taskInput.Value()
	m.form.MinutesAmount = m.minutesInput.Value()

	if _, err := m.form.Submit(); err != nil {
		var verr *services.ValidationError
		if !errors.As(err, &verr) {
			m.submitErr = err.Error()
		}
		return m, nil
	}

	m.submitErr = ""
	m.taskInput.Reset()
	m.minutesInput.Reset()
	m.suggestions = nil
	m.suggestionIdx = -1
	m.focus = focusTask
	return m, fetchStateCmd(m.store)
}

// tickCmd creates a command that sends a tick message.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// FormatDuration formats a duration as MM:SS. Negative durations
// render as 00:00.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
