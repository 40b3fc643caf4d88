// pattern: Functional Core

// Package report turns discovery and cleanup results into the short
// human-readable text shown after a run.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"binclean/internal/cleanup"
	"binclean/internal/discovery"
)

// DefaultNameWidth is the display width used for project names.
const DefaultNameWidth = 30

const ellipsis = "..."

// ExtractProjectName returns the base name of a descriptor path with a
// recognized project extension removed. Unrecognized names are returned
// unchanged and an empty path yields "Unknown".
func ExtractProjectName(path string) string {
	if strings.TrimSpace(path) == "" {
		return "Unknown"
	}
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, ext := range discovery.DefaultExtensions {
		if strings.HasSuffix(lower, ext) && len(base) > len(ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}

// FormatProjectName extracts the project name and, if it is wider than
// maxWidth terminal cells, keeps its tail behind a "..." prefix. A
// maxWidth of zero or less selects DefaultNameWidth.
func FormatProjectName(path string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = DefaultNameWidth
	}
	maxWidth = max(maxWidth, len(ellipsis)+1)

	name := ExtractProjectName(path)
	width := ansi.StringWidth(name)
	if width <= maxWidth {
		return name
	}
	return ansi.TruncateLeft(name, width-(maxWidth-len(ellipsis)), ellipsis)
}

// Summary is the one-line outcome of a cleanup run.
func Summary(res cleanup.Result, projects int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cleaned %d project(s). %d items removed. %d error(s).",
		res.ProjectsProcessed, res.ItemsRemoved(), res.Failed)
	if res.Cancelled {
		fmt.Fprintf(&sb, " Cancelled after %d of %d project(s).", res.ProjectsProcessed, projects)
	}
	return sb.String()
}

// Counts is the tally line written to the run log.
func Counts(res cleanup.Result) string {
	return fmt.Sprintf("deleted=%d skipped=%d failed=%d fallback=%d elapsed=%s",
		res.Deleted, res.Skipped, res.Failed, res.FallbackUsed, Elapsed(res.Elapsed))
}

// Elapsed formats a duration as seconds with two decimals, e.g. "1.25s".
func Elapsed(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// Details lists one line per failed target for the detail view.
func Details(res cleanup.Result) []string {
	lines := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Path, e.Reason))
	}
	return lines
}

// Skipped lists discovery's pruned subtrees that a user may care about.
// Depth and cycle prunes are expected and left out.
func Skipped(res discovery.Result) []string {
	var lines []string
	for _, s := range res.Skipped {
		switch s.Reason {
		case discovery.SkipMissingRoot, discovery.SkipUnreadable:
			if s.Err != nil {
				lines = append(lines, fmt.Sprintf("%s (%s: %v)", s.Path, s.Reason, s.Err))
			} else {
				lines = append(lines, fmt.Sprintf("%s (%s)", s.Path, s.Reason))
			}
		}
	}
	return lines
}
