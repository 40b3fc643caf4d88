// pattern: Functional Core
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"

	"binclean/internal/instance"
)

func newTestApp() (*App, *bytes.Buffer, *bytes.Buffer) {
	app := NewApp("1.0.0")
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	app.Stdout = stdout
	app.Stderr = stderr
	return app, stdout, stderr
}

func TestApp_PrintHelp_ListsCommandsInOrder(t *testing.T) {
	app, _, _ := newTestApp()
	app.AddCommand(&Command{Name: "clean", Summary: "Delete build output"})
	app.AddCommand(&Command{Name: "version", Summary: "Print version"})

	globals := flag.NewFlagSet("binclean", flag.ContinueOnError)
	globals.StringP("config-dir", "c", "", "config directory")
	app.Globals = globals

	buf := &bytes.Buffer{}
	app.PrintHelp(buf)
	output := buf.String()

	clean := strings.Index(output, "clean")
	version := strings.Index(output, "version")
	if clean < 0 || version < 0 || clean > version {
		t.Errorf("help should list clean before version:\n%s", output)
	}
	if !strings.Contains(output, "--config-dir") {
		t.Errorf("help should list global options:\n%s", output)
	}
}

func TestApp_Execute_NoArgs_PrintsHelp(t *testing.T) {
	app, _, stderr := newTestApp()
	if code := app.Execute(nil); code != ExitFailure {
		t.Errorf("Execute(nil) = %d, want %d", code, ExitFailure)
	}
	if !strings.Contains(stderr.String(), "Usage: binclean") {
		t.Errorf("expected help on stderr, got %q", stderr.String())
	}

	if code := app.Execute([]string{"help"}); code != ExitOK {
		t.Errorf("Execute(help) = %d, want 0", code)
	}
}

func TestApp_Execute_Dispatches(t *testing.T) {
	app, _, _ := newTestApp()
	var passedArgs []string
	app.AddCommand(&Command{
		Name: "locate",
		Run: func(args []string) error {
			passedArgs = args
			return nil
		},
	})

	if code := app.Execute([]string{"locate", "Program.cs"}); code != ExitOK {
		t.Errorf("Execute() = %d, want 0", code)
	}
	if len(passedArgs) != 1 || passedArgs[0] != "Program.cs" {
		t.Errorf("Command received args %v, want [Program.cs]", passedArgs)
	}
}

func TestApp_Execute_ParsesFlags(t *testing.T) {
	app, _, _ := newTestApp()
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	depth := fs.IntP("depth", "d", 0, "depth")
	var roots []string
	app.AddCommand(&Command{
		Name:  "clean",
		Flags: fs,
		Run: func(args []string) error {
			roots = args
			return nil
		},
	})

	if code := app.Execute([]string{"clean", "/a", "-d", "3", "/b"}); code != ExitOK {
		t.Fatalf("Execute() = %d, want 0", code)
	}
	if *depth != 3 {
		t.Errorf("depth = %d, want 3", *depth)
	}
	if len(roots) != 2 || roots[0] != "/a" || roots[1] != "/b" {
		t.Errorf("roots = %v, want [/a /b]", roots)
	}
}

func TestApp_Execute_CommandHelp_PrintsUsage(t *testing.T) {
	for _, withFlags := range []bool{false, true} {
		t.Run(fmt.Sprintf("flags=%v", withFlags), func(t *testing.T) {
			app, _, stderr := newTestApp()
			runCalled := false
			cmd := &Command{
				Name:  "locate",
				Usage: "Usage: binclean locate <file>",
				Run: func(args []string) error {
					runCalled = true
					return nil
				},
			}
			if withFlags {
				cmd.Flags = flag.NewFlagSet("locate", flag.ContinueOnError)
				cmd.Flags.Bool("dir", false, "print the directory")
			}
			app.AddCommand(cmd)

			if code := app.Execute([]string{"locate", "--help"}); code != ExitOK {
				t.Errorf("Execute(--help) = %d, want 0", code)
			}
			if runCalled {
				t.Error("Run should not be called for --help")
			}
			if !strings.Contains(stderr.String(), "Usage: binclean locate") {
				t.Errorf("usage missing, got: %s", stderr.String())
			}
			if withFlags && !strings.Contains(stderr.String(), "--dir") {
				t.Errorf("flag usage missing, got: %s", stderr.String())
			}
		})
	}
}

func TestApp_Execute_UnknownCommandAndFlag(t *testing.T) {
	app, _, stderr := newTestApp()
	app.AddCommand(&Command{Name: "find", Flags: flag.NewFlagSet("find", flag.ContinueOnError), Run: func([]string) error { return nil }})

	if code := app.Execute([]string{"frobnicate"}); code != ExitFailure {
		t.Errorf("unknown command exit = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "Unknown command: frobnicate") {
		t.Errorf("stderr = %q", stderr.String())
	}

	if code := app.Execute([]string{"find", "--bogus"}); code != ExitFailure {
		t.Errorf("unknown flag exit = %d, want 1", code)
	}
}

func TestApp_Execute_ErrorExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"failure", errors.New("boom"), ExitFailure},
		{"busy", fmt.Errorf("clean: %w", instance.ErrBusy), ExitBusy},
		{"partial", fmt.Errorf("%w: 1 failed", ErrPartialFailure), ExitFailure},
		{"usage", usagef("wrong"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, stderr := newTestApp()
			app.AddCommand(&Command{Name: "run", Usage: "Usage: binclean run", Run: func([]string) error { return tt.err }})

			if code := app.Execute([]string{"run"}); code != tt.want {
				t.Errorf("Execute() = %d, want %d", code, tt.want)
			}
			if tt.err != nil && !strings.Contains(stderr.String(), "Error: ") {
				t.Errorf("stderr should carry the error, got %q", stderr.String())
			}
		})
	}
}
