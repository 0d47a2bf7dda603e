package core

import (
	"io"
	"log"
	"os"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/mysh/core/shell"
)

// DefaultPrompt is shown before each line of input.
const DefaultPrompt = "# "

// LineReader reads edited lines from a terminal.
type LineReader interface {
	SetPrompt(prompt string)
	// Readline returns io.EOF when input is closed and readline.ErrInterrupt
	// when the line was abandoned with Ctrl-C.
	Readline() (string, error)
	Close() error
}

var _ LineReader = (*readline.Instance)(nil)

// ShellOptions configures NewShell.
type ShellOptions struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Prompt defaults to DefaultPrompt.
	Prompt string
	// Debug adds the working directory to the prompt.
	Debug bool
	// IsTerminal reports whether Stdin is interactive, nil means yes.
	IsTerminal func() bool
}

// Shell is the interactive read-dispatch loop.
type Shell struct {
	Dispatcher *Dispatcher
	Readline   LineReader

	Prompt string
	Debug  bool
	// Getwd is used for the debug prompt, defaults to os.Getwd.
	Getwd func() (string, error)
}

// NewShell creates a shell reading from a readline instance seeded with the
// dispatcher's history.
func NewShell(d *Dispatcher, opts ShellOptions) (*Shell, error) {
	cfg := &readline.Config{
		Stdin:          readline.NewCancelableStdin(opts.Stdin),
		Stdout:         opts.Stdout,
		Stderr:         opts.Stderr,
		FuncIsTerminal: opts.IsTerminal,
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	for _, entry := range d.History.Entries() {
		if err := rl.SaveHistory(entry); err != nil {
			rl.Close()
			return nil, err
		}
	}
	d.History.OnClear = rl.Operation.ResetHistory

	return &Shell{
		Dispatcher: d,
		Readline:   rl,
		Prompt:     opts.Prompt,
		Debug:      opts.Debug,
	}, nil
}

func (s *Shell) prompt() string {
	prompt := s.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	if !s.Debug {
		return prompt
	}

	getwd := s.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}
	wd, err := getwd()
	if err != nil {
		wd = "?"
	}
	return color.New(color.FgCyan, color.Bold).Sprintf("[%s]", wd) + " " + prompt
}

// Run reads and executes lines until a builtin quits the shell or input ends,
// then returns the exit status.
func (s *Shell) Run() int {
	d := s.Dispatcher

	for !d.Quit() {
		s.Readline.SetPrompt(s.prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			// Behave like an explicit exit so the history is still saved.
			d.Dispatch(shell.Command{Verb: VerbExit})

		case err == readline.ErrInterrupt:
			continue // Ctrl-C abandons the current line.

		case err != nil:
			log.Printf("Error readline: %v", err)
			d.Dispatch(shell.Command{Verb: VerbExit})

		default:
			d.RunLine(line)
		}
	}

	return d.ExitStatus()
}

// Close releases the terminal.
func (s *Shell) Close() error {
	return s.Readline.Close()
}
