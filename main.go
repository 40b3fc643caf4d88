// pattern: Imperative Shell
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"binclean/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses the global options and hands the rest to the command
// dispatcher. It returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("binclean", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	fs.SetInterspersed(false)

	configDir := fs.StringP("config-dir", "c", "", "config directory (default: ~/.config/binclean)")
	showVersion := fs.BoolP("version", "v", false, "print version and exit")

	newApp := func() *cli.App {
		app := cli.BuildApp(version, *configDir)
		app.Stdout = stdout
		app.Stderr = stderr
		app.Globals = fs
		return app
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			newApp().PrintHelp(stderr)
			return cli.ExitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		newApp().PrintHelp(stderr)
		return cli.ExitFailure
	}

	if *showVersion {
		fmt.Fprintln(stdout, version)
		return cli.ExitOK
	}

	return newApp().Execute(fs.Args())
}
