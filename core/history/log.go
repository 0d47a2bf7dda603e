package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// DefaultFileName is the name of the history log, relative to the shell's
	// working directory.
	DefaultFileName = "mysh.history"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Log persists history between sessions.
type Log interface {
	// Load reads every persisted entry, oldest first.
	Load() ([]string, error)
	// Save replaces the persisted entries.
	Save(entries []string) error
	// Path describes where the log lives.
	Path() string
}

// FileLog stores one entry per line in a plain text file. There's no header
// and no escaping.
type FileLog struct {
	fs   afero.Fs
	name string

	// Getwd resolves relative names for Path, defaults to os.Getwd.
	Getwd func() (string, error)
}

var _ Log = (*FileLog)(nil)

// NewFileLog creates a log at name on fs. A relative name is resolved against
// the working directory at the time of each call, so changing directory moves
// where the history is saved.
func NewFileLog(fs afero.Fs, name string) *FileLog {
	return &FileLog{fs: fs, name: name, Getwd: os.Getwd}
}

// Load implements Log. A missing file holds no entries. On a read error the
// entries read so far are returned with it.
func (l *FileLog) Load() ([]string, error) {
	fd, err := l.fs.Open(l.name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, err
	}
	defer fd.Close()

	var entries []string
	r := bufio.NewReader(fd)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			entries = append(entries, strings.TrimSuffix(line, "\r"))
		}
		switch {
		case errors.Is(err, io.EOF):
			return entries, nil
		case err != nil:
			return entries, err
		}
	}
}

// Save implements Log, truncating any previous contents.
func (l *FileLog) Save(entries []string) error {
	fd, err := l.fs.OpenFile(l.name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(fd)
	for _, entry := range entries {
		if _, err := fmt.Fprintln(w, entry); err != nil {
			fd.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

// Path implements Log.
func (l *FileLog) Path() string {
	if filepath.IsAbs(l.name) || l.Getwd == nil {
		return l.name
	}
	wd, err := l.Getwd()
	if err != nil {
		return l.name
	}
	return filepath.Join(wd, l.name)
}

// Flush writes every entry of store to log except those skip matches.
func Flush(store *Store, log Log, skip func(line string) bool) (int, error) {
	var kept []string
	for _, entry := range store.Entries() {
		if skip != nil && skip(entry) {
			continue
		}
		kept = append(kept, entry)
	}

	if err := log.Save(kept); err != nil {
		return 0, err
	}
	return len(kept), nil
}
