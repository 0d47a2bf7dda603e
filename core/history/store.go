// Package history holds the shell's command history and its persisted log.
package history

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrOutOfRange is returned when a replay index doesn't name a previous
// command.
var ErrOutOfRange = errors.New("Index out of range")

// Store is the ordered, append-only history of accepted input lines. Index 0
// is the oldest entry.
type Store struct {
	mu      sync.Mutex
	entries []string

	// OnClear, if set, is called after the history is cleared.
	OnClear func()
}

// NewStore creates a store seeded with entries, typically the lines loaded
// from a Log at startup.
func NewStore(entries []string) *Store {
	return &Store{entries: append([]string(nil), entries...)}
}

// Append adds a line to the end of the history.
func (s *Store) Append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, line)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Entries returns a copy of the history, oldest first.
func (s *Store) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.entries...)
}

// Clear discards every in-memory entry. The persisted log is untouched until
// the next flush.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	if s.OnClear != nil {
		s.OnClear()
	}
}

// Show writes the history newest-first, numbering the most recent entry 0.
func (s *Store) Show(w io.Writer) error {
	entries := s.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if _, err := fmt.Fprintf(w, "%d: %s\n", len(entries)-1-i, entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// Resolve finds the line a replay index refers to.
//
// The replay line itself is the newest entry when this is called, so index 0
// names the entry before it: position n-index-2. Any index that lands outside
// the history, or on the replay line itself, is rejected.
func (s *Store) Resolve(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index > len(s.entries)-2 {
		return "", ErrOutOfRange
	}
	return s.entries[len(s.entries)-index-2], nil
}
