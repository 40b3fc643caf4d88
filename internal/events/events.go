// package events contains message types passed from a running cleanup to
// the progress view.
package events

import (
	"binclean/internal/cleanup"
	"binclean/internal/discovery"
	"binclean/internal/report"
	"binclean/internal/runner"
)

// DiscoveredMsg is sent once discovery has finished.
type DiscoveredMsg struct {
	Projects int
	Skipped  []string // Pruned subtrees worth showing; see report.Skipped
}

// NewDiscoveredMsg summarizes a discovery result for display.
func NewDiscoveredMsg(res discovery.Result) DiscoveredMsg {
	return DiscoveredMsg{Projects: len(res.Projects), Skipped: report.Skipped(res)}
}

// ProgressMsg carries one cleanup engine event.
type ProgressMsg struct {
	Event cleanup.Event
}

// DoneMsg is sent when the run has returned.
type DoneMsg struct {
	Report runner.Report
	Err    error
}
