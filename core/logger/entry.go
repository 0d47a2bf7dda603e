package logger

// LogEntry is a single event in the log. Exactly one of the event fields is
// set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	RunCommand        *RunCommand        `json:"run_command,omitempty"`
	UnknownCommand    *UnknownCommand    `json:"unknown_command,omitempty"`
	InvalidInvocation *InvalidInvocation `json:"invalid_invocation,omitempty"`
	SpawnProcess      *SpawnProcess      `json:"spawn_process,omitempty"`
	TerminateProcess  *TerminateProcess  `json:"terminate_process,omitempty"`
	HistoryFlush      *HistoryFlush      `json:"history_flush,omitempty"`
}

// LogType is implemented by every event that can be recorded.
type LogType interface {
	isLogType()
}

// RunCommand is logged for every accepted input line.
type RunCommand struct {
	Command []string `json:"command"`
	// Line is the input as typed, before tokenizing.
	Line string `json:"line,omitempty"`
}

// UnknownCommand is logged when the verb isn't a builtin.
type UnknownCommand struct {
	Command []string `json:"command"`
}

// InvalidInvocation is logged when a builtin rejects its arguments.
type InvalidInvocation struct {
	Command []string `json:"command"`
	Error   string   `json:"error"`
}

// SpawnProcess is logged when a child process is started, or fails to start.
type SpawnProcess struct {
	Argv       []string `json:"argv"`
	Pid        int      `json:"pid,omitempty"`
	Background bool     `json:"background"`
	ExitCode   *int     `json:"exit_code,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// TerminateProcess is logged for every termination attempt.
type TerminateProcess struct {
	Pid   int    `json:"pid"`
	Error string `json:"error,omitempty"`
}

// HistoryFlush is logged when the history is persisted.
type HistoryFlush struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

func (*RunCommand) isLogType()        {}
func (*UnknownCommand) isLogType()    {}
func (*InvalidInvocation) isLogType() {}
func (*SpawnProcess) isLogType()      {}
func (*TerminateProcess) isLogType()  {}
func (*HistoryFlush) isLogType()      {}

func (le *LogEntry) setLogType(event LogType) {
	switch e := event.(type) {
	case *RunCommand:
		le.RunCommand = e
	case *UnknownCommand:
		le.UnknownCommand = e
	case *InvalidInvocation:
		le.InvalidInvocation = e
	case *SpawnProcess:
		le.SpawnProcess = e
	case *TerminateProcess:
		le.TerminateProcess = e
	case *HistoryFlush:
		le.HistoryFlush = e
	}
}

// GetLogType returns the event held by the entry, or nil.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.RunCommand != nil:
		return le.RunCommand
	case le.UnknownCommand != nil:
		return le.UnknownCommand
	case le.InvalidInvocation != nil:
		return le.InvalidInvocation
	case le.SpawnProcess != nil:
		return le.SpawnProcess
	case le.TerminateProcess != nil:
		return le.TerminateProcess
	case le.HistoryFlush != nil:
		return le.HistoryFlush
	default:
		return nil
	}
}
