package proc

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func requirePrograms(t *testing.T, paths ...string) {
	t.Helper()

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			t.Skipf("%s not available: %v", path, err)
		}
	}
}

func TestHostOS(t *testing.T) {
	requirePrograms(t, "/bin/sh", "/bin/sleep")

	stdout := &bytes.Buffer{}
	m := &Manager{
		Name:     "mysh",
		Registry: NewRegistry(),
		OS:       &HostOS{Stdout: stdout, Stderr: stdout},
		Fs:       afero.NewOsFs(),
		Stdout:   stdout,
		Stderr:   stdout,
	}

	t.Run("foreground", func(t *testing.T) {
		_, err := m.Spawn([]string{"/bin/sh", "-c", "exit 3"}, false)

		assert.Nil(t, err)
		assert.Equal(t, 0, m.Registry.Len())
	})

	t.Run("argv is passed through", func(t *testing.T) {
		stdout.Reset()
		_, err := m.Spawn([]string{"/bin/sh", "-c", `echo "$0 $1"`, "zero", "one"}, false)

		assert.Nil(t, err)
		assert.Equal(t, "zero one\n", stdout.String())
	})

	t.Run("background and terminate", func(t *testing.T) {
		started, err := m.Repeat(2, []string{"/bin/sleep", "30"})
		assert.Nil(t, err)
		assert.Equal(t, 2, started)
		assert.Equal(t, 2, m.Registry.Len())

		assert.Equal(t, 2, m.TerminateAll())
		assert.Equal(t, 0, m.Registry.Len())
	})
}
