package proc

import (
	"errors"
	"io"
	"os/exec"

	"golang.org/x/sys/unix"
)

// OS starts and signals processes.
type OS interface {
	// Start runs argv[0] with argv as its argument vector. argv[0] is used as
	// given: no PATH search is done.
	Start(argv []string, background bool) (Process, error)
	// Terminate sends a graceful termination request to pid.
	Terminate(pid int) error
}

// Process is a started child.
type Process interface {
	Pid() int
	// Wait blocks until the process exits and returns its exit code.
	Wait() (int, error)
}

// HostOS runs real processes.
type HostOS struct {
	// Stdin is only given to foreground processes, background processes read
	// from the null device.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ OS = (*HostOS)(nil)

// Start implements OS.
func (h *HostOS) Start(argv []string, background bool) (Process, error) {
	cmd := &exec.Cmd{
		Path:   argv[0],
		Args:   argv,
		Stdout: h.Stdout,
		Stderr: h.Stderr,
	}
	if !background {
		cmd.Stdin = h.Stdin
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &hostProcess{cmd: cmd}, nil
}

// Terminate implements OS by sending SIGTERM.
func (h *HostOS) Terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}

type hostProcess struct {
	cmd *exec.Cmd
}

func (p *hostProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *hostProcess) Wait() (int, error) {
	err := p.cmd.Wait()

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	case err != nil:
		return -1, err
	default:
		return 0, nil
	}
}
