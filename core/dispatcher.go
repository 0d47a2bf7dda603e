package core

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/josephlewis42/mysh/core/history"
	"github.com/josephlewis42/mysh/core/logger"
	"github.com/josephlewis42/mysh/core/proc"
	"github.com/josephlewis42/mysh/core/shell"
	"github.com/spf13/afero"
)

// DefaultName prefixes every diagnostic the shell prints.
const DefaultName = "mysh"

// Exit statuses returned by builtins.
const (
	StatusOK       = 0
	StatusFailure  = 1
	StatusUsage    = 2
	StatusNotFound = 127
)

// Dispatcher executes parsed commands against the shell's state.
type Dispatcher struct {
	// Name prefixes diagnostics, defaults to DefaultName.
	Name string

	History *history.Store
	Log     history.Log
	Procs   *proc.Manager

	// Fs is where the file builtins operate.
	Fs afero.Fs
	// Chdir changes the working directory, typically os.Chdir.
	Chdir func(dir string) error

	Stdout io.Writer
	Stderr io.Writer

	Tokenizer shell.Tokenizer
	Events    *logger.SessionLogger

	quit       bool
	exitStatus int
}

// Quit reports whether a builtin asked the shell to stop.
func (d *Dispatcher) Quit() bool {
	return d.quit
}

// ExitStatus is the status the shell should exit with once Quit is true.
func (d *Dispatcher) ExitStatus() int {
	return d.exitStatus
}

func (d *Dispatcher) name() string {
	if d.Name == "" {
		return DefaultName
	}
	return d.Name
}

func (d *Dispatcher) printf(format string, a ...interface{}) {
	fmt.Fprintf(d.Stdout, "%s: %s\n", d.name(), fmt.Sprintf(format, a...))
}

func (d *Dispatcher) errorf(format string, a ...interface{}) {
	fmt.Fprintf(d.Stderr, "%s: %s\n", d.name(), fmt.Sprintf(format, a...))
}

func (d *Dispatcher) tokenizer() shell.Tokenizer {
	if d.Tokenizer == nil {
		return shell.FieldsTokenizer{}
	}
	return d.Tokenizer
}

// RunLine records a line of input in the history and executes it.
//
// Blank lines are ignored. Every other line is appended exactly once before
// it runs, including lines that turn out to be unknown or malformed.
func (d *Dispatcher) RunLine(line string) int {
	if shell.IsBlank(line) {
		return StatusOK
	}

	d.History.Append(line)

	cmd, ok, err := shell.Parse(d.tokenizer(), line)
	switch {
	case err != nil:
		d.errorf("%v", err)
		d.Events.Record(&logger.InvalidInvocation{Command: []string{line}, Error: err.Error()})
		return StatusUsage
	case !ok:
		return StatusOK
	}

	d.Events.Record(&logger.RunCommand{Command: cmd.Argv(), Line: cmd.Line})
	return d.Dispatch(cmd)
}

// Dispatch runs cmd without touching the history.
func (d *Dispatcher) Dispatch(cmd shell.Command) int {
	builtin, ok := AllBuiltins[cmd.Verb]
	if !ok {
		d.errorf("%s: command not found", cmd.Verb)
		d.Events.Record(&logger.UnknownCommand{Command: cmd.Argv()})
		return StatusNotFound
	}

	if len(cmd.Args) < builtin.MinArgs {
		d.errorf("%s", builtin.Missing)
		d.Events.Record(&logger.InvalidInvocation{Command: cmd.Argv(), Error: builtin.Missing})
		return StatusUsage
	}

	return builtin.Main(d, cmd.Argv())
}

// parseNumber converts the argument named name to an int.
func parseNumber(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("Argument [%s] must be a number", name)
	}
	return n, nil
}

// parsePID converts a pid argument, rejecting values a pid_t can't hold.
func parsePID(value string) (int, error) {
	n, err := strconv.ParseInt(value, 10, 32)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, proc.ErrPIDOutOfRange
	case err != nil:
		return 0, fmt.Errorf("Argument [pid] must be a number")
	}
	return int(n), nil
}

// numberArg parses value, printing a diagnostic on failure.
func (d *Dispatcher) numberArg(args []string, name, value string) (int, bool) {
	n, err := parseNumber(name, value)
	if err != nil {
		d.invalidArg(args, err)
		return 0, false
	}
	return n, true
}

func (d *Dispatcher) invalidArg(args []string, err error) {
	d.errorf("%v", err)
	d.Events.Record(&logger.InvalidInvocation{Command: args, Error: err.Error()})
}
