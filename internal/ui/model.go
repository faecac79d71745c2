// Package ui provides a Bubble Tea TUI that renders the current session's
// level as events arrive.
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/level"
)

// eventMsg delivers one watcher event into the update loop.
type eventMsg struct{ ev event.Event }

// errMsg delivers one watcher error into the update loop.
type errMsg struct{ err error }

// streamClosedMsg signals that the watcher shut down.
type streamClosedMsg struct{}

// Options configures the UI.
type Options struct {
	Events <-chan event.Event
	Errors <-chan error
}

// Model is the root application state for Bubble Tea.
type Model struct {
	events <-chan event.Event
	errs   <-chan error

	lv       *level.Level
	spin     spinner.Model
	width    int
	height   int
	lastErr  error
	running  bool
	runSince time.Time
	finished []string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		events: opts.Events,
		errs:   opts.Errors,
		lv:     level.New(),
		spin:   sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		waitForEvent(m.events),
		waitForError(m.errs),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		m.applyEvent(msg.ev)
		return m, waitForEvent(m.events)

	case errMsg:
		m.lastErr = msg.err
		return m, waitForError(m.errs)

	case streamClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyEvent(ev event.Event) {
	switch ev.(type) {
	case event.RunStart:
		m.running = true
		m.runSince = time.Now()
	case event.RunEnd:
		m.running = false
		if name := m.lv.Name(); name != "" {
			m.finished = append(m.finished, name)
		}
	}
	m.lv.Apply(ev)
}

// waitForEvent blocks on the event channel and converts the result into a
// message; re-issued after every delivery so the channel keeps draining.
func waitForEvent(ch <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

func waitForError(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return errMsg{err: err}
	}
}
