// pattern: Imperative Shell

// Package runner ties the guard, discovery and cleanup engine together
// into the single operation the command line exposes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"binclean/internal/cleanup"
	"binclean/internal/config"
	"binclean/internal/discovery"
	"binclean/internal/instance"
	"binclean/internal/logging"
	"binclean/internal/report"
)

// ErrNoRoots is returned when neither the caller nor scan_paths name a
// directory to search.
var ErrNoRoots = errors.New("no search roots given and scan_paths is empty")

// Options configure a Runner. All fields are optional.
type Options struct {
	Guard        *instance.Guard        // Defaults to an in-process guard
	Logs         logging.LoggerProvider // Defaults to discarding output
	Observer     func(cleanup.Event)    // Receives per-project progress
	OnDiscovered func(discovery.Result) // Called once discovery finishes
}

// Runner runs discovery and cleanup with one configuration.
type Runner struct {
	cfg          config.Config
	guard        *instance.Guard
	logs         logging.LoggerProvider
	logger       *logging.ScopedLogger
	scanner      *discovery.Scanner
	observer     func(cleanup.Event)
	onDiscovered func(discovery.Result)
}

// Report is everything a finished run produced.
type Report struct {
	Roots     []string
	Discovery discovery.Result
	Cleanup   cleanup.Result
}

// Summary is the one-line outcome shown to the user.
func (r Report) Summary() string {
	return report.Summary(r.Cleanup, len(r.Discovery.Projects))
}

// OK reports whether every target was handled and the run was not cut
// short.
func (r Report) OK() bool {
	return r.Cleanup.Failed == 0 && !r.Cleanup.Cancelled
}

// New creates a Runner for cfg.
func New(cfg config.Config, opts Options) *Runner {
	r := &Runner{
		cfg:          cfg,
		guard:        opts.Guard,
		logs:         opts.Logs,
		observer:     opts.Observer,
		onDiscovered: opts.OnDiscovered,
	}
	if r.guard == nil {
		r.guard = instance.NewGuard()
	}
	r.logger = r.scoped("runner")
	r.scanner = discovery.NewScanner(r.scoped("discovery"))
	return r
}

func (r *Runner) scoped(scope string) *logging.ScopedLogger {
	if r.logs == nil {
		return logging.NopLogger()
	}
	return r.logs.For(scope)
}

// Config returns the configuration the runner was built with.
func (r *Runner) Config() config.Config {
	return r.cfg
}

// Run discovers every project under roots and cleans its targets. An
// empty roots falls back to the configured scan_paths.
//
// It fails fast with instance.ErrBusy when another run holds the guard,
// and with the validation error when the config is unusable; in both
// cases nothing on disk is touched. Per-target failures are reported in
// Report.Cleanup, not as an error.
func (r *Runner) Run(ctx context.Context, roots []string, cancel cleanup.CancelFunc) (Report, error) {
	if err := r.guard.TryAcquire(); err != nil {
		r.logger.Warn("cleanup rejected", "error", err)
		return Report{}, err
	}
	defer r.guard.Release()

	if err := r.cfg.Validate(); err != nil {
		r.logger.Error("invalid configuration", "error", err)
		return Report{}, fmt.Errorf("invalid configuration: %w", err)
	}

	roots, err := r.resolveRoots(roots)
	if err != nil {
		return Report{}, err
	}

	r.logger.Info("starting cleanup", "roots", roots, "targets", r.cfg.TargetSubdirectories, "policy", r.cfg.Policy().String())

	found, err := r.scanner.FindProjectDirectories(roots, r.cfg.ProjectExtensions, r.cfg.DiscoveryOptions())
	if err != nil {
		return Report{}, fmt.Errorf("discovery: %w", err)
	}
	r.logger.Info("found project files", "count", len(found.Projects), "skipped", len(found.Skipped))
	for _, line := range report.Skipped(found) {
		r.logger.Warn("skipped", "dir", line)
	}
	if r.onDiscovered != nil {
		r.onDiscovered(found)
	}

	rep := Report{Roots: roots, Discovery: found}
	if len(found.Projects) == 0 {
		r.logger.Info("nothing to clean")
		return rep, nil
	}

	engine := cleanup.NewEngine(r.scoped("cleanup"), cleanup.Options{
		Policy:   r.cfg.Policy(),
		Observer: r.observer,
	})
	r.logger.Info("projects to clean", "count", len(found.Projects))

	rep.Cleanup, err = engine.Clean(ctx, found.Dirs(), r.cfg.TargetSubdirectories, cancel)
	if err != nil {
		return rep, err
	}

	r.logger.Info("finished", "elapsed", report.Elapsed(rep.Cleanup.Elapsed), "counts", report.Counts(rep.Cleanup))
	return rep, nil
}

// Find runs discovery alone, touching nothing.
func (r *Runner) Find(roots []string) (discovery.Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return discovery.Result{}, fmt.Errorf("invalid configuration: %w", err)
	}
	roots, err := r.resolveRoots(roots)
	if err != nil {
		return discovery.Result{}, err
	}
	return r.scanner.FindProjectDirectories(roots, r.cfg.ProjectExtensions, r.cfg.DiscoveryOptions())
}

// Locate returns the project that encloses startFile, or nil.
func (r *Runner) Locate(startFile string) (*discovery.ProjectDescriptor, error) {
	return r.scanner.FindEnclosingProject(startFile, r.cfg.ProjectExtensions)
}

func (r *Runner) resolveRoots(roots []string) ([]string, error) {
	if len(roots) == 0 {
		roots = r.cfg.ResolveScanPaths()
		if len(roots) == 0 {
			return nil, ErrNoRoots
		}
		return roots, nil
	}
	resolved := make([]string, 0, len(roots))
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			return nil, fmt.Errorf("%w: empty search root", discovery.ErrInvalidArgument)
		}
		resolved = append(resolved, config.ExpandPath(root))
	}
	return resolved, nil
}
