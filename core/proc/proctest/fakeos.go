// Package proctest provides an in-memory proc.OS for tests.
package proctest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/josephlewis42/mysh/core/proc"
	"golang.org/x/sys/unix"
)

// FakeOS records starts and terminations without running anything.
type FakeOS struct {
	mu sync.Mutex

	// NextPID is the pid handed to the next started process.
	NextPID int
	// ExitCode is returned by Wait for every process.
	ExitCode int
	// StartErr, if set, fails every Start.
	StartErr error
	// Dead holds pids that fail to terminate with ESRCH.
	Dead map[int]bool

	Started    [][]string
	Background []bool
	Waited     []int
	Terminated []int
}

var _ proc.OS = (*FakeOS)(nil)

// NewFakeOS creates a FakeOS that hands out pids starting at 100.
func NewFakeOS() *FakeOS {
	return &FakeOS{NextPID: 100, Dead: make(map[int]bool)}
}

// Start implements proc.OS.
func (f *FakeOS) Start(argv []string, background bool) (proc.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.StartErr != nil {
		return nil, f.StartErr
	}

	pid := f.NextPID
	f.NextPID++
	f.Started = append(f.Started, append([]string(nil), argv...))
	f.Background = append(f.Background, background)
	return &fakeProcess{os: f, pid: pid}, nil
}

// Terminate implements proc.OS.
func (f *FakeOS) Terminate(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Terminated = append(f.Terminated, pid)
	if f.Dead[pid] {
		return unix.ESRCH
	}
	return nil
}

// Kill marks pid as already exited.
func (f *FakeOS) Kill(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Dead[pid] = true
}

// TerminatedSorted returns the terminated pids in ascending order.
func (f *FakeOS) TerminatedSorted() []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := append([]int(nil), f.Terminated...)
	sort.Ints(out)
	return out
}

type fakeProcess struct {
	os  *FakeOS
	pid int
}

func (p *fakeProcess) Pid() int {
	return p.pid
}

func (p *fakeProcess) Wait() (int, error) {
	p.os.mu.Lock()
	defer p.os.mu.Unlock()

	p.os.Waited = append(p.os.Waited, p.pid)
	return p.os.ExitCode, nil
}

func (p *fakeProcess) String() string {
	return fmt.Sprintf("fake process %d", p.pid)
}
