package proc_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/josephlewis42/mysh/core/proc"
	"github.com/josephlewis42/mysh/core/proc/proctest"
	"github.com/juju/ratelimit"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

type testManager struct {
	*proc.Manager
	os     *proctest.FakeOS
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestManager(t *testing.T) *testManager {
	t.Helper()

	fs := afero.NewMemMapFs()
	assert.Nil(t, afero.WriteFile(fs, "/bin/sleep", nil, 0755))

	fakeOS := proctest.NewFakeOS()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testManager{
		Manager: &proc.Manager{
			Name:     "mysh",
			Registry: proc.NewRegistry(),
			OS:       fakeOS,
			Fs:       fs,
			Stdout:   stdout,
			Stderr:   stderr,
		},
		os:     fakeOS,
		stdout: stdout,
		stderr: stderr,
	}
}

func TestSpawn_foreground(t *testing.T) {
	m := newTestManager(t)

	pid, err := m.Spawn([]string{"/bin/sleep", "1"}, false)

	assert.Nil(t, err)
	assert.Equal(t, 100, pid)
	assert.Equal(t, [][]string{{"/bin/sleep", "1"}}, m.os.Started)
	assert.Equal(t, []int{100}, m.os.Waited)
	assert.Equal(t, 0, m.Registry.Len(), "foreground child must be unregistered after wait")
	assert.Empty(t, m.stdout.String())
}

func TestSpawn_background(t *testing.T) {
	m := newTestManager(t)

	pid, err := m.Spawn([]string{"/bin/sleep", "5"}, true)

	assert.Nil(t, err)
	assert.True(t, m.Registry.Contains(pid))
	assert.Empty(t, m.os.Waited)
	assert.Equal(t, "mysh: Spawned process with pid 100\n", m.stdout.String())
}

func TestSpawn_missingProgram(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Spawn([]string{"sleep", "5"}, true)

	assert.True(t, errors.Is(err, proc.ErrNoSuchProgram))
	assert.Empty(t, m.os.Started, "must not start a process for a missing program")
	assert.Equal(t, "mysh: sleep: No such file or directory\n", m.stderr.String())
}

func TestSpawn_startFails(t *testing.T) {
	m := newTestManager(t)
	m.os.StartErr = errors.New("fork/exec /bin/sleep: permission denied")

	_, err := m.Spawn([]string{"/bin/sleep"}, false)

	assert.NotNil(t, err)
	assert.Equal(t, 0, m.Registry.Len())
	assert.Equal(t, "mysh: fork/exec /bin/sleep: permission denied\n", m.stderr.String())
}

func TestSpawn_noArgs(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Spawn(nil, false)
	assert.Equal(t, proc.ErrNoProgram, err)
}

func TestTerminate(t *testing.T) {
	m := newTestManager(t)
	pid, _ := m.Spawn([]string{"/bin/sleep", "5"}, true)
	m.stdout.Reset()

	assert.Nil(t, m.Terminate(pid))

	assert.False(t, m.Registry.Contains(pid))
	assert.Equal(t, "mysh: Terminated process with pid 100\n", m.stdout.String())
}

func TestTerminate_unregistered(t *testing.T) {
	m := newTestManager(t)

	assert.Nil(t, m.Terminate(4242))
	assert.Equal(t, []int{4242}, m.os.Terminated, "the signal is sent even for unknown pids")
}

func TestTerminate_failure(t *testing.T) {
	m := newTestManager(t)
	pid, _ := m.Spawn([]string{"/bin/sleep", "5"}, true)
	m.os.Kill(pid)

	err := m.Terminate(pid)

	assert.NotNil(t, err)
	assert.True(t, m.Registry.Contains(pid), "a failed termination leaves the registry untouched")
	assert.Equal(t, "mysh: no such process\n", m.stderr.String())
}

func TestTerminate_invalidPID(t *testing.T) {
	for _, pid := range []int{-1, -100, 0} {
		m := newTestManager(t)

		assert.Equal(t, proc.ErrInvalidPID, m.Terminate(pid))
		assert.Empty(t, m.os.Terminated, "no signal may be sent for pid %d", pid)
	}
}

func TestTerminate_pidOutOfRange(t *testing.T) {
	for _, pid := range []int64{math.MaxInt32 + 1, 1<<32 - 1, 1<<32 + 1, math.MaxInt64} {
		m := newTestManager(t)

		assert.Equal(t, proc.ErrPIDOutOfRange, m.Terminate(int(pid)))
		assert.Empty(t, m.os.Terminated, "no signal may be sent for pid %d", pid)
		assert.Equal(t, "mysh: Argument [pid] is out of range\n", m.stderr.String())
	}
}

func TestTerminateAll_empty(t *testing.T) {
	m := newTestManager(t)

	assert.Equal(t, 0, m.TerminateAll())
	assert.Equal(t, "mysh: No processes to terminate\n", m.stdout.String())
	assert.Empty(t, m.os.Terminated)
}

func TestTerminateAll(t *testing.T) {
	m := newTestManager(t)
	started, err := m.Repeat(3, []string{"/bin/sleep", "5"})
	assert.Nil(t, err)
	assert.Equal(t, 3, started)

	// One child exited on its own and the registry never noticed.
	m.os.Kill(101)
	m.stdout.Reset()

	assert.Equal(t, 3, m.TerminateAll())

	assert.Equal(t, 0, m.Registry.Len())
	assert.Equal(t, []int{100, 101, 102}, m.os.TerminatedSorted())
	assert.Equal(t, "mysh: no such process\n", m.stderr.String())
	assert.Equal(t, "mysh: Terminated process with pid 100\n"+
		"mysh: Terminated process with pid 102\n"+
		"mysh: Terminated 3 processes\n", m.stdout.String())
}

func TestTerminateAll_single(t *testing.T) {
	m := newTestManager(t)
	m.Spawn([]string{"/bin/sleep", "5"}, true)
	m.stdout.Reset()

	assert.Equal(t, 1, m.TerminateAll())
	assert.Contains(t, m.stdout.String(), "mysh: Terminated 1 process\n")
}

func TestRepeat(t *testing.T) {
	m := newTestManager(t)
	m.Limiter = ratelimit.NewBucketWithRate(1000, 10)

	started, err := m.Repeat(3, []string{"/bin/sleep", "5", "-x"})

	assert.Nil(t, err)
	assert.Equal(t, 3, started)
	assert.Equal(t, []bool{true, true, true}, m.os.Background)
	for _, argv := range m.os.Started {
		assert.Equal(t, []string{"/bin/sleep", "5", "-x"}, argv)
	}
	assert.Equal(t, []int{100, 101, 102}, m.Registry.PIDs())
}

func TestRepeat_failuresDontAbort(t *testing.T) {
	m := newTestManager(t)

	started, err := m.Repeat(2, []string{"/bin/missing"})

	assert.Nil(t, err)
	assert.Equal(t, 0, started)
	assert.Equal(t, "mysh: /bin/missing: No such file or directory\n"+
		"mysh: /bin/missing: No such file or directory\n", m.stderr.String())
}

func TestRepeat_zeroAndNegative(t *testing.T) {
	m := newTestManager(t)

	started, err := m.Repeat(0, []string{"/bin/sleep"})
	assert.Nil(t, err)
	assert.Equal(t, 0, started)

	_, err = m.Repeat(-1, []string{"/bin/sleep"})
	assert.Equal(t, proc.ErrInvalidCount, err)
	assert.Empty(t, m.os.Started)
}
