package logger

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       int        `json:"sessions"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	RunCommand        RunCommandReport        `json:"run_command_report"`
	UnknownCommand    UnknownCommandReport    `json:"unknown_command_report"`
	InvalidInvocation InvalidInvocationReport `json:"invalid_invocation_report"`
	Process           ProcessReport           `json:"process_report"`
	HistoryFlush      HistoryFlushReport      `json:"history_flush_report"`

	seenSessions map[string]bool
}

// Update adds an entry to the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	if le.SessionID != "" {
		if r.seenSessions == nil {
			r.seenSessions = make(map[string]bool)
		}
		if !r.seenSessions[le.SessionID] {
			r.seenSessions[le.SessionID] = true
			r.Sessions++
		}
	}

	switch event := le.GetLogType().(type) {
	case *RunCommand:
		r.RunCommand.update(event)
	case *UnknownCommand:
		r.UnknownCommand.update(event)
	case *InvalidInvocation:
		r.InvalidInvocation.update(event)
	case *SpawnProcess:
		r.Process.updateSpawn(event)
	case *TerminateProcess:
		r.Process.updateTerminate(event)
	case *HistoryFlush:
		r.HistoryFlush.update(event)
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%T", event))
	}
}

type RunCommandReport struct {
	// Name of the command
	CommandNames StrCounter `json:"command_names"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if len(rc.Command) > 0 {
		r.CommandNames.Increment(rc.Command[0])
	}
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(uc *UnknownCommand) {
	if len(uc.Command) > 0 {
		r.CommandNames.Increment(uc.Command[0])
	}
}

type InvalidInvocationReport struct {
	CommandNames StrCounter `json:"command_counts"`
	Errors       StrCounter `json:"errors"`
}

func (r *InvalidInvocationReport) update(ii *InvalidInvocation) {
	if len(ii.Command) > 0 {
		r.CommandNames.Increment(ii.Command[0])
	}
	r.Errors.Increment(ii.Error)
}

type ProcessReport struct {
	Spawned           int        `json:"spawned"`
	Background        int        `json:"background"`
	SpawnFailures     StrCounter `json:"spawn_failures"`
	Terminated        int        `json:"terminated"`
	TerminateFailures StrCounter `json:"terminate_failures"`
	Programs          StrCounter `json:"programs"`
}

func (r *ProcessReport) updateSpawn(sp *SpawnProcess) {
	if sp.Error != "" {
		r.SpawnFailures.Increment(sp.Error)
		return
	}
	// Foreground children log once more with their exit code.
	if sp.ExitCode != nil {
		return
	}

	r.Spawned++
	if sp.Background {
		r.Background++
	}
	if len(sp.Argv) > 0 {
		r.Programs.Increment(sp.Argv[0])
	}
}

func (r *ProcessReport) updateTerminate(tp *TerminateProcess) {
	if tp.Error != "" {
		r.TerminateFailures.Increment(tp.Error)
		return
	}
	r.Terminated++
}

type HistoryFlushReport struct {
	Count    int        `json:"count"`
	Failures StrCounter `json:"failures"`
}

func (r *HistoryFlushReport) update(hf *HistoryFlush) {
	if hf.Error != "" {
		r.Failures.Increment(hf.Error)
		return
	}
	r.Count++
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}
