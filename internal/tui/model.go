package tui

import (
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"binclean/internal/logging"
	"binclean/internal/runner"
)

// maxProblems is how many recent warnings and errors the view keeps.
const maxProblems = 5

// Model is the progress view for one cleanup run.
type Model struct {
	width  int
	styles *Styles

	spinner spinner.Model
	cancel  *atomic.Bool
	logs    <-chan logging.LogEntry

	total   int
	index   int
	current string
	skipped []string

	deleted  int
	failed   int
	absent   int
	problems []logging.LogEntry

	cancelling bool
	done       bool
	report     runner.Report
	err        error
}

// NewModel creates the progress view. Setting the cancel flag is how the
// view asks the run to stop; logs may be nil.
func NewModel(themeName string, cancel *atomic.Bool, logs <-chan logging.LogEntry) Model {
	styles := NewStyles(themeName)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle()

	return Model{
		styles:  styles,
		spinner: s,
		cancel:  cancel,
		logs:    logs,
	}
}

// Init starts the spinner and log consumption.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, consumeLogEntries(m.logs))
}

// Done reports whether the run has finished.
func (m Model) Done() bool {
	return m.done
}

// Result returns the finished run's report and error.
func (m Model) Result() (runner.Report, error) {
	return m.report, m.err
}
