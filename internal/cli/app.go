// pattern: Functional Core
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUsage is returned by a command whose arguments are malformed. Execute
// answers it with the command's usage line and exit status 2.
var ErrUsage = errors.New("usage")

// Command represents a single CLI command with its metadata and handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(args []string) error
}

// App is the top-level CLI application.
type App struct {
	commands map[string]*Command
	order    []string
	version  string

	// Stdout and Stderr receive command output. Default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	// ExitFunc ends the process with a status code. Defaults to os.Exit.
	ExitFunc func(int)
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string) *App {
	return &App{
		commands: make(map[string]*Command),
		version:  version,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		ExitFunc: os.Exit,
	}
}

// AddCommand registers a command. Help lists commands in registration order.
func (a *App) AddCommand(cmd *Command) {
	if _, ok := a.commands[cmd.Name]; !ok {
		a.order = append(a.order, cmd.Name)
	}
	a.commands[cmd.Name] = cmd
}

// Execute dispatches the CLI arguments to the appropriate command.
// Returns true if the TUI should be launched, false otherwise.
//
// Exit codes:
// - 2: unknown command or malformed arguments
// - 1: the command failed
func (a *App) Execute(args []string) bool {
	if len(args) == 0 {
		return true
	}

	name := args[0]
	if name == "help" {
		a.PrintHelp(a.Stdout)
		return false
	}

	cmd, ok := a.commands[name]
	if !ok {
		_, _ = fmt.Fprintf(a.Stderr, "error: unknown command %q\n\n", name)
		a.PrintHelp(a.Stderr)
		a.ExitFunc(2)
		return false
	}

	for _, arg := range args[1:] {
		if arg == "--help" || arg == "-h" {
			_, _ = fmt.Fprintln(a.Stdout, cmd.Usage)
			return false
		}
	}

	if err := cmd.Run(args[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			_, _ = fmt.Fprintln(a.Stderr, cmd.Usage)
			a.ExitFunc(2)
			return false
		}
		_, _ = fmt.Fprintf(a.Stderr, "error: %v\n", err)
		a.ExitFunc(1)
	}
	return false
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage: projdex [options] [command]\n\n")
	_, _ = fmt.Fprintf(w, "Commands:\n")
	for _, name := range a.order {
		_, _ = fmt.Fprintf(w, "  %-12s %s\n", name, a.commands[name].Summary)
	}
	_, _ = fmt.Fprintf(w, "  %-12s %s\n", "(none)", "Launch interactive TUI")
	_, _ = fmt.Fprintf(w, "\nUse \"projdex <command> --help\" for command details.\n\n")
	_, _ = fmt.Fprintf(w, "Options:\n")
}
