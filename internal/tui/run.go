// pattern: Imperative Shell

package tui

import (
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/multierr"

	"binclean/internal/cleanup"
	"binclean/internal/discovery"
	"binclean/internal/events"
	"binclean/internal/logging"
	"binclean/internal/runner"
)

// Hooks connect a run to the progress view. Pass Observer and
// OnDiscovered to runner.Options and Cancel to Runner.Run.
type Hooks struct {
	Observer     func(cleanup.Event)
	OnDiscovered func(discovery.Result)
	Cancel       cleanup.CancelFunc
}

type outcome struct {
	report runner.Report
	err    error
}

// Run shows the progress view while fn runs in the background and returns
// fn's result once both have finished. If the view fails, the run is asked
// to stop and its result is still returned alongside the view's error.
func Run(themeName string, logs <-chan logging.LogEntry, fn func(Hooks) (runner.Report, error), opts ...tea.ProgramOption) (runner.Report, error) {
	var cancelled atomic.Bool
	p := tea.NewProgram(NewModel(themeName, &cancelled, logs), opts...)

	hooks := Hooks{
		Observer:     func(ev cleanup.Event) { p.Send(events.ProgressMsg{Event: ev}) },
		OnDiscovered: func(res discovery.Result) { p.Send(events.NewDiscoveredMsg(res)) },
		Cancel:       cancelled.Load,
	}

	done := make(chan outcome, 1)
	go func() {
		rep, err := fn(hooks)
		done <- outcome{report: rep, err: err}
		p.Send(events.DoneMsg{Report: rep, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancelled.Store(true)
		out := <-done
		return out.report, multierr.Append(out.err, fmt.Errorf("progress view: %w", err))
	}
	out := <-done
	return out.report, out.err
}
