// Package shell turns raw input lines into commands.
//
// The shell has no grammar: a line is a verb followed by
// arguments. There are no pipes, redirections, variables or quoting in the
// default mode, so a line is split on whitespace and nothing else.
package shell

import (
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
)

const (
	// TokenizerFields splits on runs of whitespace.
	TokenizerFields = "fields"
	// TokenizerShlex splits like a POSIX shell, honoring quotes and escapes.
	TokenizerShlex = "shlex"
)

// Tokenizer breaks a line into words.
type Tokenizer interface {
	Split(line string) ([]string, error)
}

// FieldsTokenizer splits a line on whitespace and drops empty fragments, so
// a token never contains whitespace.
type FieldsTokenizer struct{}

var _ Tokenizer = FieldsTokenizer{}

// Split implements Tokenizer.
func (FieldsTokenizer) Split(line string) ([]string, error) {
	return strings.Fields(line), nil
}

// ShlexTokenizer splits a line with POSIX quoting rules. Quoted tokens may
// contain whitespace.
type ShlexTokenizer struct{}

var _ Tokenizer = ShlexTokenizer{}

// Split implements Tokenizer.
func (ShlexTokenizer) Split(line string) ([]string, error) {
	tokens, err := shlex.Split(line, true)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %v", err)
	}
	return tokens, nil
}

// NewTokenizer returns the tokenizer registered under name.
func NewTokenizer(name string) (Tokenizer, error) {
	switch name {
	case "", TokenizerFields:
		return FieldsTokenizer{}, nil
	case TokenizerShlex:
		return ShlexTokenizer{}, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", name)
	}
}

// Command is a parsed input line.
type Command struct {
	// Verb is the first token of the line.
	Verb string
	// Args holds the remaining tokens in order.
	Args []string
	// Line is the raw text the command was parsed from.
	Line string
}

// Argv returns the verb followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Verb}, c.Args...)
}

// IsBlank reports whether line has no content besides whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Parse tokenizes line into a Command. ok is false if the line held no
// tokens.
func Parse(tok Tokenizer, line string) (cmd Command, ok bool, err error) {
	tokens, err := tok.Split(line)
	if err != nil {
		return Command{Line: line}, false, err
	}
	if len(tokens) == 0 {
		return Command{Line: line}, false, nil
	}

	return Command{
		Verb: tokens[0],
		Args: tokens[1:],
		Line: line,
	}, true, nil
}

// Verb returns the first whitespace-delimited token of line, or "" for a
// blank line.
func Verb(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
