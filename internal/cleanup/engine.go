// pattern: Imperative Shell

package cleanup

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"binclean/internal/logging"
)

// CancelFunc reports whether the caller wants the run to stop. It is
// consulted before each project, never in the middle of one.
type CancelFunc func() bool

// EventKind identifies a progress event.
type EventKind int

const (
	EventProjectStarted EventKind = iota
	EventTargetFinished
)

// Event is sent to Options.Observer as the run progresses.
type Event struct {
	Kind       EventKind
	Index      int // Zero-based project index
	Total      int // Number of projects in the run
	ProjectDir string
	Target     *TargetResult // Set for EventTargetFinished
}

// TargetResult is the final state of one (project directory, name) pair.
type TargetResult struct {
	ProjectDir string
	Name       string
	Path       string
	RemoveResult
}

// TargetError is a failed target and a human-readable reason.
type TargetError struct {
	Path   string
	Reason string
}

// Result aggregates one cleanup run.
// Deleted + Failed + Skipped always equals Attempted().
type Result struct {
	Deleted           int
	Failed            int
	Skipped           int
	FallbackUsed      int // Deleted targets that needed the manual phase
	ProjectsProcessed int
	Errors            []TargetError
	Targets           []TargetResult
	Elapsed           time.Duration
	Cancelled         bool
}

// Attempted is the number of targets that reached a terminal state.
func (r Result) Attempted() int {
	return len(r.Targets)
}

// ItemsRemoved sums the files and directories removed across all targets.
func (r Result) ItemsRemoved() int {
	n := 0
	for _, t := range r.Targets {
		if t.Outcome.IsDeleted() {
			n += t.Files + t.Dirs
		}
	}
	return n
}

func (r *Result) record(t TargetResult) {
	r.Targets = append(r.Targets, t)
	switch t.Outcome {
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeDeleted:
		r.Deleted++
	case OutcomeDeletedFallback:
		r.Deleted++
		r.FallbackUsed++
	case OutcomeFailed:
		r.Failed++
		r.Errors = append(r.Errors, TargetError{Path: t.Path, Reason: t.Err().Error()})
	}
}

// Options configure an Engine.
type Options struct {
	Policy   Policy
	Observer func(Event) // Optional; called synchronously
}

// Engine deletes target subdirectories under project directories.
// It is not safe for concurrent use; callers serialize runs with a guard.
type Engine struct {
	logger   *logging.ScopedLogger
	remover  *Remover
	policy   Policy
	observer func(Event)
}

// NewEngine creates a cleanup engine. A nil logger discards output.
func NewEngine(logger *logging.ScopedLogger, opts Options) *Engine {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Engine{
		logger:   logger,
		remover:  NewRemover(),
		policy:   opts.Policy,
		observer: opts.Observer,
	}
}

// Policy returns the name policy the engine validates against.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Clean deletes every target name under every project directory, in
// input order. Names are validated first; if any is invalid a
// *ValidationError is returned and nothing is touched. Per-target failures
// are recorded in the Result, never returned.
//
// Cancellation (cancel returning true, or ctx being done) is checked
// before each project. Work already done is kept and Result.Cancelled set.
func (e *Engine) Clean(ctx context.Context, projectDirs []string, targetNames []string, cancel CancelFunc) (Result, error) {
	if len(targetNames) == 0 {
		return Result{}, fmt.Errorf("%w: no target subdirectory names", ErrInvalidArgument)
	}
	if v := ValidateTargetNames(targetNames, e.policy); !v.Valid {
		return Result{}, &ValidationError{Invalid: v.Invalid}
	}

	dirs := make([]string, len(projectDirs))
	for i, dir := range projectDirs {
		if strings.TrimSpace(dir) == "" {
			return Result{}, fmt.Errorf("%w: empty project directory at index %d", ErrInvalidArgument, i)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return Result{}, fmt.Errorf("resolve project directory %q: %w", dir, err)
		}
		dirs[i] = abs
	}

	start := time.Now()
	var result Result

	for i, dir := range dirs {
		if stopRequested(ctx, cancel) {
			result.Cancelled = true
			e.logger.Info("cleanup cancelled",
				"processed", result.ProjectsProcessed,
				"remaining", len(dirs)-i,
			)
			break
		}

		e.emit(Event{Kind: EventProjectStarted, Index: i, Total: len(dirs), ProjectDir: dir})
		e.logger.Info("cleaning project", "dir", dir, "index", i+1, "total", len(dirs))

		for _, name := range targetNames {
			target := TargetResult{
				ProjectDir: dir,
				Name:       name,
				Path:       TargetPath(dir, name),
			}
			if err := CheckTargetPath(dir, name); err != nil {
				target.RemoveResult = RemoveResult{Outcome: OutcomeFailed, Primary: err}
			} else {
				target.RemoveResult = e.remover.RemoveTree(target.Path)
			}
			result.record(target)
			e.logTarget(target)
			e.emit(Event{Kind: EventTargetFinished, Index: i, Total: len(dirs), ProjectDir: dir, Target: &target})
		}
		result.ProjectsProcessed++
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

func stopRequested(ctx context.Context, cancel CancelFunc) bool {
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	return cancel != nil && cancel()
}

func (e *Engine) emit(ev Event) {
	if e.observer != nil {
		e.observer(ev)
	}
}

func (e *Engine) logTarget(t TargetResult) {
	switch t.Outcome {
	case OutcomeSkipped:
		e.logger.Debug("target absent", "path", t.Path)
	case OutcomeDeleted:
		e.logger.Info("cleaned", "target", t.Name, "files", t.Files, "dirs", t.Dirs)
	case OutcomeDeletedFallback:
		e.logger.Warn("cleaned after fallback", "target", t.Name, "files", t.Files, "dirs", t.Dirs, "error", t.Primary)
	case OutcomeFailed:
		e.logger.Error("could not clean", "path", t.Path, "error", t.Err())
	}
}
