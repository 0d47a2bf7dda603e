package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if _, err := Initialize(tempDir, log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("LoadFile", func(t *testing.T) {
		byFile, err := Load(filepath.Join(tempDir, ConfigurationName))
		assert.Nil(t, err)
		assert.Equal(t, cfg.HistoryFile, byFile.HistoryFile)
	})

	enabled := *cfg
	enabled.EventLog = "events.log"

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := enabled.OpenEventLog()
		assert.Nil(t, err)
		_, err = fd.WriteString("{}\n")
		assert.Nil(t, err)
		fd.Close()

		contents, err := os.ReadFile(filepath.Join(tempDir, "events.log"))
		assert.Nil(t, err)
		assert.Equal(t, "{}\n", string(contents))
	})

	t.Run("ReadEventLog", func(t *testing.T) {
		fd, err := enabled.ReadEventLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("EventLogDisabled", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		assert.Nil(t, err)
		assert.Nil(t, fd)
	})
}

func TestInitialize_keepsExisting(t *testing.T) {
	tempDir := t.TempDir()
	custom := []byte("prompt: \"mysh> \"\nhistory_file: h.txt\nhistory_backend: sqlite\ntokenizer: shlex\nevent_log: \"\"\nspawn_rate: 2\nspawn_burst: 1\n")
	assert.Nil(t, os.WriteFile(filepath.Join(tempDir, ConfigurationName), custom, 0600))

	cfg, err := Initialize(tempDir, log.New(io.Discard, "", 0))

	assert.Nil(t, err)
	assert.Equal(t, "mysh> ", cfg.Prompt)
	assert.Equal(t, "sqlite", cfg.HistoryBackend)
	assert.Equal(t, "shlex", cfg.Tokenizer)
}

func TestLoad_invalid(t *testing.T) {
	cases := map[string]string{
		"unknown-field": "prompt: x\nssh_port: 22\n",
		"bad-value":     "prompt: x\nhistory_file: h\nhistory_backend: tape\ntokenizer: fields\nspawn_burst: 1\n",
	}

	for tn, contents := range cases {
		t.Run(tn, func(t *testing.T) {
			tempDir := t.TempDir()
			assert.Nil(t, os.WriteFile(filepath.Join(tempDir, ConfigurationName), []byte(contents), 0600))

			_, err := Load(tempDir)
			assert.NotNil(t, err)
		})
	}
}

func TestLoad_missing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, os.IsNotExist(err))
}
