// pattern: Functional Core
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"binclean/internal/instance"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1 // Errors, including runs where some targets failed
	ExitBusy    = 2 // Another cleanup holds the run lock
)

// Command represents a single CLI command with its metadata and handler.
// Flags, if set, are parsed before Run and Run receives the positional
// arguments.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Flags   *flag.FlagSet
	Run     func(args []string) error
}

// App represents the top-level CLI application.
type App struct {
	commands map[string]*Command
	order    []string
	version  string

	Stdout  io.Writer
	Stderr  io.Writer
	Globals *flag.FlagSet // Printed under "Options" in help, if set
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string) *App {
	return &App{
		commands: make(map[string]*Command),
		version:  version,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// AddCommand registers a command. Help lists commands in registration order.
func (a *App) AddCommand(cmd *Command) {
	if _, exists := a.commands[cmd.Name]; !exists {
		a.order = append(a.order, cmd.Name)
	}
	a.commands[cmd.Name] = cmd
}

// Execute dispatches the CLI arguments to the matching command and
// returns the process exit code.
func (a *App) Execute(args []string) int {
	if len(args) == 0 {
		a.PrintHelp(a.Stderr)
		return ExitFailure
	}

	switch args[0] {
	case "help", "--help", "-h":
		a.PrintHelp(a.Stderr)
		return ExitOK
	}

	cmd, ok := a.commands[args[0]]
	if !ok {
		fmt.Fprintf(a.Stderr, "Unknown command: %s\n\n", args[0])
		a.PrintHelp(a.Stderr)
		return ExitFailure
	}

	rest := args[1:]
	if cmd.Flags != nil {
		cmd.Flags.SetOutput(io.Discard)
		if err := cmd.Flags.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				a.PrintUsage(a.Stderr, cmd)
				return ExitOK
			}
			fmt.Fprintf(a.Stderr, "Error: %v\n\n", err)
			a.PrintUsage(a.Stderr, cmd)
			return ExitFailure
		}
		rest = cmd.Flags.Args()
	} else {
		for _, arg := range rest {
			if arg == "--help" || arg == "-h" {
				a.PrintUsage(a.Stderr, cmd)
				return ExitOK
			}
		}
	}

	if err := cmd.Run(rest); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(a.Stderr, "Error: %v\n\n", err)
			a.PrintUsage(a.Stderr, cmd)
			return ExitFailure
		}
		fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return ExitCode(err)
	}
	return ExitOK
}

// ExitCode maps a command error onto a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, instance.ErrBusy):
		return ExitBusy
	default:
		return ExitFailure
	}
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: binclean [options] <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range a.order {
		cmd := a.commands[name]
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintf(w, "\nUse \"binclean <command> --help\" for command details.\n")
	if a.Globals != nil && a.Globals.HasFlags() {
		fmt.Fprintf(w, "\nOptions:\n%s", a.Globals.FlagUsages())
	}
}

// PrintUsage prints a command's usage line and its flags.
func (a *App) PrintUsage(w io.Writer, cmd *Command) {
	fmt.Fprintf(w, "%s\n", cmd.Usage)
	if cmd.Flags != nil && cmd.Flags.HasFlags() {
		fmt.Fprintf(w, "\nFlags:\n%s", cmd.Flags.FlagUsages())
	}
}

// usageError marks wrong positional arguments; the command's usage is
// printed after the message.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}
