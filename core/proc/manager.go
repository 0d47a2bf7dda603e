// Package proc launches, tracks and terminates the shell's child processes.
package proc

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/josephlewis42/mysh/core/fsutil"
	"github.com/josephlewis42/mysh/core/logger"
	"github.com/juju/ratelimit"
	"github.com/spf13/afero"
)

var (
	ErrNoProgram     = errors.New("no program given")
	ErrNoSuchProgram = errors.New("No such file or directory")
	ErrInvalidPID    = errors.New("Argument [pid] must be > 0")
	ErrPIDOutOfRange = errors.New("Argument [pid] is out of range")
	ErrInvalidCount  = errors.New("Argument [repetitions] must be >= 0")
)

// Manager spawns and terminates children, keeping Registry up to date.
type Manager struct {
	// Name prefixes every message, e.g. "mysh".
	Name     string
	Registry *Registry
	OS       OS
	// Fs is used to check programs exist before starting them.
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer
	Events *logger.SessionLogger
	// Limiter paces Repeat, nil means no limit.
	Limiter *ratelimit.Bucket
}

func (m *Manager) printf(format string, a ...interface{}) {
	fmt.Fprintf(m.Stdout, "%s: %s\n", m.Name, fmt.Sprintf(format, a...))
}

func (m *Manager) errorf(format string, a ...interface{}) {
	fmt.Fprintf(m.Stderr, "%s: %s\n", m.Name, fmt.Sprintf(format, a...))
}

// Spawn starts argv as a child process.
//
// The pid is registered as soon as the process starts. A foreground spawn
// blocks until the child exits and then unregisters it; a background spawn
// returns immediately and leaves the pid registered.
func (m *Manager) Spawn(argv []string, background bool) (int, error) {
	if len(argv) == 0 {
		return 0, ErrNoProgram
	}

	// No PATH search: argv[0] must name an existing file.
	if !fsutil.Exists(m.Fs, argv[0]) {
		err := fmt.Errorf("%s: %w", argv[0], ErrNoSuchProgram)
		m.spawnFailed(argv, background, err)
		return 0, err
	}

	proc, err := m.OS.Start(argv, background)
	if err != nil {
		m.spawnFailed(argv, background, err)
		return 0, err
	}

	pid := proc.Pid()
	m.Registry.Add(pid)
	m.Events.Record(&logger.SpawnProcess{Argv: argv, Pid: pid, Background: background})

	if background {
		m.printf("Spawned process with pid %d", pid)
		return pid, nil
	}

	exitCode, err := proc.Wait()
	m.Registry.Remove(pid)
	m.Events.Record(&logger.SpawnProcess{Argv: argv, Pid: pid, ExitCode: &exitCode})
	if err != nil {
		m.errorf("%v", err)
		return pid, err
	}
	return pid, nil
}

func (m *Manager) spawnFailed(argv []string, background bool, err error) {
	m.errorf("%v", err)
	m.Events.Record(&logger.SpawnProcess{Argv: argv, Background: background, Error: err.Error()})
}

// Terminate asks pid to exit. The pid doesn't need to be registered, but it
// must be positive: zero and negative pids address whole process groups. It
// must also fit in a pid_t, the kernel would otherwise truncate it.
func (m *Manager) Terminate(pid int) error {
	switch {
	case pid <= 0:
		m.errorf("%v", ErrInvalidPID)
		return ErrInvalidPID
	case int64(pid) > math.MaxInt32:
		m.errorf("%v", ErrPIDOutOfRange)
		return ErrPIDOutOfRange
	}

	if err := m.OS.Terminate(pid); err != nil {
		m.errorf("%v", err)
		m.Events.Record(&logger.TerminateProcess{Pid: pid, Error: err.Error()})
		return err
	}

	m.Registry.Remove(pid)
	m.printf("Terminated process with pid %d", pid)
	m.Events.Record(&logger.TerminateProcess{Pid: pid})
	return nil
}

// TerminateAll terminates every registered pid, reporting failures as they
// happen, then empties the registry whatever the outcome. It returns the
// number of pids it tried.
func (m *Manager) TerminateAll() int {
	pids := m.Registry.PIDs()
	if len(pids) == 0 {
		m.printf("No processes to terminate")
		return 0
	}

	for _, pid := range pids {
		_ = m.Terminate(pid)
	}
	m.Registry.Clear()

	noun := "processes"
	if len(pids) == 1 {
		noun = "process"
	}
	m.printf("Terminated %d %s", len(pids), noun)
	return len(pids)
}

// Repeat starts count background copies of argv one after another. A failed
// spawn is reported and the rest still run. It returns the number started.
func (m *Manager) Repeat(count int, argv []string) (int, error) {
	if count < 0 {
		return 0, ErrInvalidCount
	}

	started := 0
	for i := 0; i < count; i++ {
		if m.Limiter != nil {
			m.Limiter.Wait(1)
		}
		if _, err := m.Spawn(argv, true); err == nil {
			started++
		}
	}
	return started, nil
}
