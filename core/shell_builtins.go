package core

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/josephlewis42/mysh/core/fsutil"
	"github.com/josephlewis42/mysh/core/history"
	"github.com/josephlewis42/mysh/core/logger"
	"github.com/josephlewis42/mysh/core/proc"
	"github.com/josephlewis42/mysh/core/shell"
	"github.com/pborman/getopt/v2"
)

// Verb names with special meaning to the shell.
const (
	VerbReplay = "replay"
	VerbExit   = "byebye"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]*Builtin)

// BuiltinFunc runs a builtin. args[0] is the verb.
type BuiltinFunc func(d *Dispatcher, args []string) int

// Builtin is a command the shell implements itself.
type Builtin struct {
	// Use is the one-line usage, e.g. "replay [index]".
	Use string
	// Short describes the builtin for help.
	Short string
	// MinArgs is the minimum number of arguments after the verb.
	MinArgs int
	// Missing is printed when fewer than MinArgs arguments are given.
	Missing string

	Main BuiltinFunc
}

// BuiltinNames returns the sorted names of every builtin.
func BuiltinNames() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start runs a program in the foreground.
func Start(d *Dispatcher, args []string) int {
	if _, err := d.Procs.Spawn(args[1:], false); err != nil {
		return StatusFailure
	}
	return StatusOK
}

// Background runs a program without waiting for it.
func Background(d *Dispatcher, args []string) int {
	if _, err := d.Procs.Spawn(args[1:], true); err != nil {
		return StatusFailure
	}
	return StatusOK
}

// Repeat runs a program in the background several times.
func Repeat(d *Dispatcher, args []string) int {
	count, ok := d.numberArg(args, "repetitions", args[1])
	if !ok {
		return StatusUsage
	}

	started, err := d.Procs.Repeat(count, args[2:])
	if err != nil {
		d.errorf("%v", err)
		return StatusUsage
	}
	if started != count {
		return StatusFailure
	}
	return StatusOK
}

// Terminate stops a single process.
func Terminate(d *Dispatcher, args []string) int {
	pid, err := parsePID(args[1])
	if err != nil {
		d.invalidArg(args, err)
		return StatusUsage
	}

	switch err := d.Procs.Terminate(pid); {
	case errors.Is(err, proc.ErrInvalidPID), errors.Is(err, proc.ErrPIDOutOfRange):
		return StatusUsage
	case err != nil:
		return StatusFailure
	}
	return StatusOK
}

// TerminateAll stops every tracked process.
func TerminateAll(d *Dispatcher, args []string) int {
	d.Procs.TerminateAll()
	return StatusOK
}

// History lists or clears the history.
func History(d *Dispatcher, args []string) int {
	opts := getopt.New()
	opts.SetProgram(args[0])
	clear := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := d.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "Display or clear the history list.")
		fmt.Fprintln(w, "The most recent command is listed first with index 0.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		return StatusUsage
	}

	if *clear {
		d.History.Clear()
		d.printf("History cleared")
		return StatusOK
	}

	if err := d.History.Show(d.Stdout); err != nil {
		d.errorf("%v", err)
		return StatusFailure
	}
	return StatusOK
}

// Replay re-runs an earlier line without adding it to the history again.
func Replay(d *Dispatcher, args []string) int {
	index, ok := d.numberArg(args, "index", args[1])
	if !ok {
		return StatusUsage
	}

	line, err := d.History.Resolve(index)
	if err != nil {
		d.errorf("%v", err)
		return StatusFailure
	}

	cmd, ok, err := shell.Parse(d.tokenizer(), line)
	switch {
	case err != nil:
		d.errorf("%v", err)
		return StatusUsage
	case !ok:
		return StatusOK
	case cmd.Verb == VerbReplay:
		d.errorf("Cannot replay a replay command")
		return StatusFailure
	}

	return d.Dispatch(cmd)
}

// MoveToDir changes the working directory.
func MoveToDir(d *Dispatcher, args []string) int {
	if err := fsutil.Chdir(d.Fs, d.Chdir, args[1]); err != nil {
		d.errorf("%v", err)
		return StatusFailure
	}
	return StatusOK
}

// Dwelt reports whether a path exists and what it is.
func Dwelt(d *Dispatcher, args []string) int {
	fmt.Fprintln(d.Stdout, fsutil.Describe(d.Fs, args[1]))
	return StatusOK
}

// Maik creates a new draft file.
func Maik(d *Dispatcher, args []string) int {
	if err := fsutil.CreateFile(d.Fs, args[1], "Draft\n"); err != nil {
		d.errorf("%v", err)
		return StatusFailure
	}
	return StatusOK
}

// Coppy copies a file without overwriting.
func Coppy(d *Dispatcher, args []string) int {
	if err := fsutil.CopyFile(d.Fs, args[1], args[2], false); err != nil {
		d.errorf("%v", err)
		return StatusFailure
	}
	return StatusOK
}

// CoppyAbode copies a directory tree.
func CoppyAbode(d *Dispatcher, args []string) int {
	progress := func(from, to string) {
		d.printf("%s => %s", from, to)
	}
	if err := fsutil.CopyDir(d.Fs, args[1], args[2], progress); err != nil {
		d.errorf("%v", err)
		return StatusFailure
	}
	return StatusOK
}

// Help lists the builtins.
func Help(d *Dispatcher, args []string) int {
	w := d.Stdout
	fmt.Fprintf(w, "%s: these commands are defined internally.\n", d.name())
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, name := range BuiltinNames() {
		fmt.Fprintf(tw, "  %s\t%s\n", AllBuiltins[name].Use, AllBuiltins[name].Short)
	}
	if err := tw.Flush(); err != nil {
		return StatusFailure
	}
	return StatusOK
}

// ByeBye saves the history and stops the shell.
func ByeBye(d *Dispatcher, args []string) int {
	status := d.flushHistory()
	d.quit = true
	d.exitStatus = status
	return status
}

func (d *Dispatcher) isExitLine(line string) bool {
	tokens, err := d.tokenizer().Split(line)
	if err != nil || len(tokens) == 0 {
		return shell.Verb(line) == VerbExit
	}
	return tokens[0] == VerbExit
}

func (d *Dispatcher) flushHistory() int {
	path := d.Log.Path()
	saved, err := history.Flush(d.History, d.Log, d.isExitLine)
	if err != nil {
		d.errorf("Couldn't save history file: %v", err)
		d.Events.Record(&logger.HistoryFlush{Path: path, Error: err.Error()})
		return StatusFailure
	}

	d.printf("History saved to %s", path)
	d.Events.Record(&logger.HistoryFlush{Path: path, Entries: saved})
	return StatusOK
}

func init() {
	register := func(name string, b *Builtin) {
		AllBuiltins[name] = b
	}

	register("start", &Builtin{
		Use:     "start [program] [args...]",
		Short:   "run a program and wait for it to exit",
		MinArgs: 1,
		Missing: "Missing argument [program]",
		Main:    Start,
	})
	register("background", &Builtin{
		Use:     "background [program] [args...]",
		Short:   "run a program without waiting for it",
		MinArgs: 1,
		Missing: "Missing argument [program]",
		Main:    Background,
	})
	register("repeat", &Builtin{
		Use:     "repeat [repetitions] [command]",
		Short:   "run a program in the background several times",
		MinArgs: 2,
		Missing: "Usage: repeat [repetitions] [command]",
		Main:    Repeat,
	})
	register("terminate", &Builtin{
		Use:     "terminate [pid]",
		Short:   "ask a process to exit",
		MinArgs: 1,
		Missing: "Missing argument [pid]",
		Main:    Terminate,
	})
	register("terminateall", &Builtin{
		Use:   "terminateall",
		Short: "ask every tracked process to exit",
		Main:  TerminateAll,
	})
	register("history", &Builtin{
		Use:   "history [-c]",
		Short: "list the history newest first, or clear it",
		Main:  History,
	})
	register(VerbReplay, &Builtin{
		Use:     "replay [index]",
		Short:   "run the command at a history index again",
		MinArgs: 1,
		Missing: "Missing argument [index]",
		Main:    Replay,
	})
	register("movetodir", &Builtin{
		Use:     "movetodir [directory]",
		Short:   "change the working directory",
		MinArgs: 1,
		Missing: "Missing argument [directory]",
		Main:    MoveToDir,
	})
	register("dwelt", &Builtin{
		Use:     "dwelt [file | directory]",
		Short:   "tell whether a path is a file or a directory",
		MinArgs: 1,
		Missing: "Missing argument [file | directory]",
		Main:    Dwelt,
	})
	register("maik", &Builtin{
		Use:     "maik [filename]",
		Short:   "create a new draft file",
		MinArgs: 1,
		Missing: "Missing argument [filename]",
		Main:    Maik,
	})
	register("coppy", &Builtin{
		Use:     "coppy [source] [destination]",
		Short:   "copy a file",
		MinArgs: 2,
		Missing: "Usage: coppy [source] [destination]",
		Main:    Coppy,
	})
	register("coppyabode", &Builtin{
		Use:     "coppyabode [source-dir] [target-dir]",
		Short:   "copy a directory tree",
		MinArgs: 2,
		Missing: "Usage: coppyabode [source-dir] [target-dir]",
		Main:    CoppyAbode,
	})
	register("help", &Builtin{
		Use:   "help",
		Short: "list the builtins",
		Main:  Help,
	})
	register(VerbExit, &Builtin{
		Use:   "byebye",
		Short: "save the history and exit",
		Main:  ByeBye,
	})
}
