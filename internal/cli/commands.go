// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"binclean/internal/config"
	"binclean/internal/discovery"
	"binclean/internal/instance"
	"binclean/internal/logging"
	"binclean/internal/report"
	"binclean/internal/runner"
	"binclean/internal/tui"
)

const logFileName = "binclean.log"

var (
	// ErrPartialFailure is returned when at least one target could not be
	// removed. The run's summary has already been printed.
	ErrPartialFailure = errors.New("some targets could not be cleaned")

	// ErrCancelled is returned when a run stopped before every project.
	ErrCancelled = errors.New("cleanup cancelled")

	// ErrNotFound is returned by locate when no project encloses the file.
	ErrNotFound = errors.New("no enclosing project found")
)

// BuildApp creates and configures the CLI application with all commands.
func BuildApp(version string, configDir string) *App {
	app := NewApp(version)

	app.AddCommand(cleanCommand(app, configDir))
	app.AddCommand(findCommand(app, configDir))
	app.AddCommand(locateCommand(app, configDir))

	app.AddCommand(&Command{
		Name:    "unlock",
		Summary: "Remove a stale run lock left by a crashed cleanup",
		Usage:   "Usage: binclean unlock",
		Run: func(args []string) error {
			return runUnlockCommand(app, configDir)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: binclean version",
		Run: func(args []string) error {
			fmt.Fprintln(app.Stdout, app.version)
			return nil
		},
	})

	return app
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

// openLogs starts the log manager for one command. The run log always goes
// to a rotating file in the data directory; console, if set, also gets a
// human-readable copy.
func openLogs(configDir string, cfg config.Config, console io.Writer, consoleLevel string) (*logging.Manager, error) {
	mgr, err := logging.NewManager(logging.Config{
		FilePath:       filepath.Join(config.DataDir(configDir), logFileName),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          cfg.LogLevel,
		Console:        console,
		ConsoleLevel:   consoleLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return mgr, nil
}

func cleanCommand(app *App, configDir string) *Command {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	depth := fs.IntP("depth", "d", 0, "maximum directory depth to search, 1-100 (default from config, 20)")
	targets := fs.StringArrayP("target", "t", nil, "subdirectory to delete in each project, repeatable (default bin and obj)")
	strict := fs.Bool("strict", false, "reject nested target names such as bin/Debug")
	interactive := fs.BoolP("interactive", "i", false, "show a live progress view")
	quiet := fs.BoolP("quiet", "q", false, "only log warnings and errors to the terminal")

	return &Command{
		Name:    "clean",
		Summary: "Delete build output under every project found in the roots",
		Usage:   "Usage: binclean clean [roots...] [flags]\n\nWith no roots, scan_paths from the config file are searched.",
		Flags:   fs,
		Run: func(args []string) error {
			cfg, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			if fs.Changed("depth") {
				cfg.MaxDepth = discovery.ClampDepth(*depth)
			}
			if len(*targets) > 0 {
				cfg.TargetSubdirectories = *targets
			}
			if *strict {
				cfg.StrictNames = true
			}
			return runCleanCommand(app, configDir, cfg, args, *interactive, *quiet)
		},
	}
}

func runCleanCommand(app *App, configDir string, cfg config.Config, roots []string, interactive, quiet bool) error {
	var console io.Writer
	var consoleLevel string
	if !interactive {
		console = app.Stderr
		if quiet {
			consoleLevel = "warn"
		}
	}
	logs, err := openLogs(configDir, cfg, console, consoleLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logs.Close() }()

	guard := instance.NewFileGuard(config.DataDir(configDir))

	var rep runner.Report
	if interactive {
		rep, err = tui.Run(cfg.Theme, logs.Entries(), func(h tui.Hooks) (runner.Report, error) {
			r := runner.New(cfg, runner.Options{
				Guard:        guard,
				Logs:         logs,
				Observer:     h.Observer,
				OnDiscovered: h.OnDiscovered,
			})
			return r.Run(context.Background(), roots, h.Cancel)
		})
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		rep, err = runner.New(cfg, runner.Options{Guard: guard, Logs: logs}).Run(ctx, roots, nil)
	}
	if err != nil {
		if errors.Is(err, instance.ErrBusy) {
			return fmt.Errorf("%w; try again when it finishes, or run \"binclean unlock\" if it crashed", err)
		}
		return err
	}

	printReport(app.Stdout, rep)

	switch {
	case rep.Cleanup.Failed > 0:
		return fmt.Errorf("%w: %d failed", ErrPartialFailure, rep.Cleanup.Failed)
	case rep.Cleanup.Cancelled:
		return ErrCancelled
	}
	return nil
}

func printReport(w io.Writer, rep runner.Report) {
	fmt.Fprintln(w, rep.Summary())
	for _, line := range report.Details(rep.Cleanup) {
		fmt.Fprintf(w, "  failed: %s\n", line)
	}
	for _, line := range report.Skipped(rep.Discovery) {
		fmt.Fprintf(w, "  skipped: %s\n", line)
	}
}

// projectJSON is the find --json record for one project.
type projectJSON struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Dir  string `json:"dir"`
}

func findCommand(app *App, configDir string) *Command {
	fs := flag.NewFlagSet("find", flag.ContinueOnError)
	depth := fs.IntP("depth", "d", 0, "maximum directory depth to search, 1-100 (default from config, 20)")
	asJSON := fs.Bool("json", false, "print projects as a JSON array")

	return &Command{
		Name:    "find",
		Summary: "List the projects clean would visit, without deleting anything",
		Usage:   "Usage: binclean find [roots...] [flags]",
		Flags:   fs,
		Run: func(args []string) error {
			cfg, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			if fs.Changed("depth") {
				cfg.MaxDepth = discovery.ClampDepth(*depth)
			}

			logs, err := openLogs(configDir, cfg, nil, "")
			if err != nil {
				return err
			}
			defer func() { _ = logs.Close() }()

			res, err := runner.New(cfg, runner.Options{Logs: logs}).Find(args)
			if err != nil {
				return err
			}

			for _, line := range report.Skipped(res) {
				fmt.Fprintf(app.Stderr, "skipped: %s\n", line)
			}

			if *asJSON {
				out := make([]projectJSON, 0, len(res.Projects))
				for _, p := range res.Projects {
					out = append(out, projectJSON{Name: p.Name(), Path: p.Path, Dir: p.Dir})
				}
				enc := json.NewEncoder(app.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for _, p := range res.Projects {
				fmt.Fprintln(app.Stdout, p.Path)
			}
			return nil
		},
	}
}

func locateCommand(app *App, configDir string) *Command {
	fs := flag.NewFlagSet("locate", flag.ContinueOnError)
	dirOnly := fs.Bool("dir", false, "print the project directory instead of the descriptor")

	return &Command{
		Name:    "locate",
		Summary: "Print the project file that encloses a source file",
		Usage:   "Usage: binclean locate <file> [flags]",
		Flags:   fs,
		Run: func(args []string) error {
			if len(args) != 1 {
				return usagef("locate takes exactly one file, got %d", len(args))
			}
			cfg, err := loadConfig(configDir)
			if err != nil {
				return err
			}

			logs, err := openLogs(configDir, cfg, nil, "")
			if err != nil {
				return err
			}
			defer func() { _ = logs.Close() }()

			project, err := runner.New(cfg, runner.Options{Logs: logs}).Locate(args[0])
			if err != nil {
				return err
			}
			if project == nil {
				return fmt.Errorf("%w for %s", ErrNotFound, args[0])
			}
			if *dirOnly {
				fmt.Fprintln(app.Stdout, project.Dir)
			} else {
				fmt.Fprintln(app.Stdout, project.Path)
			}
			return nil
		},
	}
}

// runUnlockCommand removes a stale lock file from a crashed run.
func runUnlockCommand(app *App, configDir string) error {
	if err := instance.Unlock(config.DataDir(configDir)); err != nil {
		if errors.Is(err, instance.ErrBusy) {
			return fmt.Errorf("%w; stop it first", err)
		}
		return err
	}
	fmt.Fprintln(app.Stdout, "Removed stale run lock.")
	return nil
}
