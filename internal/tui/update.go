// pattern: Imperative Shell

package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"binclean/internal/cleanup"
	"binclean/internal/events"
	"binclean/internal/logging"
	"binclean/internal/report"
)

// maxLogBatch bounds how many buffered entries one logEntriesMsg carries.
const maxLogBatch = 50

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.LogEntry
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.done {
				return m, tea.Quit
			}
			m.requestCancel()
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case events.DiscoveredMsg:
		m.total = msg.Projects
		m.skipped = msg.Skipped
		return m, nil

	case events.ProgressMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case events.DoneMsg:
		m.done = true
		m.report = msg.Report
		m.err = msg.Err
		return m, tea.Quit

	case logEntriesMsg:
		for _, entry := range msg.entries {
			m.addProblem(entry)
		}
		if m.done {
			return m, nil
		}
		return m, consumeLogEntries(m.logs)
	}

	return m, nil
}

// requestCancel sets the shared flag. The engine sees it before the next
// project, so the current one still finishes.
func (m *Model) requestCancel() {
	if m.cancel != nil {
		m.cancel.Store(true)
	}
	m.cancelling = true
}

func (m *Model) applyEvent(ev cleanup.Event) {
	switch ev.Kind {
	case cleanup.EventProjectStarted:
		m.index = ev.Index + 1
		m.total = ev.Total
		m.current = report.FormatProjectName(ev.ProjectDir, report.DefaultNameWidth)
	case cleanup.EventTargetFinished:
		if ev.Target == nil {
			return
		}
		switch {
		case ev.Target.Outcome.IsDeleted():
			m.deleted++
		case ev.Target.Outcome == cleanup.OutcomeFailed:
			m.failed++
		default:
			m.absent++
		}
	}
}

func (m *Model) addProblem(entry logging.LogEntry) {
	if !entry.IsProblem() {
		return
	}
	m.problems = append(m.problems, entry)
	if len(m.problems) > maxProblems {
		m.problems = m.problems[len(m.problems)-maxProblems:]
	}
}

// consumeLogEntries waits for the next log entry and then takes whatever
// else is already buffered, so a burst costs one render.
func consumeLogEntries(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		entries := []logging.LogEntry{entry}
		for len(entries) < maxLogBatch {
			select {
			case e, ok := <-ch:
				if !ok {
					return logEntriesMsg{entries: entries}
				}
				entries = append(entries, e)
			default:
				return logEntriesMsg{entries: entries}
			}
		}
		return logEntriesMsg{entries: entries}
	}
}
