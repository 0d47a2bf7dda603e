package ttylog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
)

// AsciicastFileExt holds the suggested file extension for asciicast files.
const AsciicastFileExt = "cast"

const (
	castOutput = "o"
	castInput  = "i"
	castMarker = "m"

	// Stderr is written as red output so it stands out on playback and can
	// be told apart when the recording is read back.
	stderrStart = "\x1b[31m"
	stderrEnd   = "\x1b[0m"
)

type asciicastHeader struct {
	Version   int               `json:"version"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Timestamp int64             `json:"timestamp"`
	Command   string            `json:"command"`
	Title     string            `json:"title"`
	Env       map[string]string `json:"env"`
}

func newAsciicastHeader(startMicros int64, dir string) *asciicastHeader {
	header := &asciicastHeader{
		Version:   2,
		Width:     80,
		Height:    24,
		Timestamp: time.UnixMicro(startMicros).Unix(),
		Command:   "mysh",
		Title:     "mysh",
		Env: map[string]string{
			"SHELL": "mysh",
			"TERM":  "xterm-256color",
		},
	}
	if dir != "" {
		header.Title = "mysh in " + dir
		header.Env["PWD"] = dir
	}
	return header
}

// asciicastSink writes asciicast v2. Every line typed at the prompt also
// gets a marker so players can jump between commands.
type asciicastSink struct {
	w     io.Writer
	dir   string
	start int64
	// typed holds the input line being entered.
	typed []rune
}

// NewAsciicastLogSink creates a LogSink compatible with the asciicast v2
// format. dir is the shell's starting directory, it's put in the header if
// set.
//
// See: https://github.com/asciinema/asciinema/blob/develop/doc/asciicast-v2.md
func NewAsciicastLogSink(w io.Writer, dir string) LogSink {
	sink := &asciicastSink{w: w, dir: dir, start: -1}
	return sink.write
}

func (s *asciicastSink) write(e *Entry) error {
	if s.start < 0 {
		s.start = e.TimestampMicros
		if err := writeJSONLine(s.w, newAsciicastHeader(s.start, s.dir)); err != nil {
			return err
		}
	}
	at := microsecondsToSeconds(e.TimestampMicros - s.start)

	switch e.FD {
	case FDStdin:
		if err := s.event(at, castInput, string(e.Data)); err != nil {
			return err
		}
		for _, line := range s.typeInput(string(e.Data)) {
			if err := s.event(at, castMarker, line); err != nil {
				return err
			}
		}
		return nil
	case FDStderr:
		return s.event(at, castOutput, stderrStart+string(e.Data)+stderrEnd)
	default:
		return s.event(at, castOutput, string(e.Data))
	}
}

func (s *asciicastSink) event(at float64, code, data string) error {
	return writeJSONLine(s.w, []interface{}{at, code, data})
}

// typeInput applies keystrokes to the line being typed and returns any lines
// they completed.
func (s *asciicastSink) typeInput(data string) []string {
	var done []string
	for _, r := range data {
		switch {
		case r == '\r' || r == '\n':
			if line := strings.TrimSpace(string(s.typed)); line != "" {
				done = append(done, line)
			}
			s.typed = s.typed[:0]
		case r == '\b' || r == 0x7f:
			if len(s.typed) > 0 {
				s.typed = s.typed[:len(s.typed)-1]
			}
		case r == 0x03:
			s.typed = s.typed[:0]
		case unicode.IsPrint(r):
			s.typed = append(s.typed, r)
		}
	}
	return done
}

func writeJSONLine(w io.Writer, v interface{}) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", line)
	return err
}

// AsciicastLogSource reads an asciicast v2 recording. Markers are skipped and
// red-wrapped output is read back as stderr.
type AsciicastLogSource struct {
	r      *bufio.Reader
	header *asciicastHeader
}

var _ LogSource = (*AsciicastLogSource)(nil)

// NewAsciicastLogSource reads log events from an Asciicast formatted file.
func NewAsciicastLogSource(r io.Reader) *AsciicastLogSource {
	return &AsciicastLogSource{r: bufio.NewReader(r)}
}

// Next gets the next log entry, it returns io.EOF if there are no more.
func (src *AsciicastLogSource) Next() (*Entry, error) {
	if src.header == nil {
		if err := src.readHeader(); err != nil {
			return nil, err
		}
	}

	for {
		line, err := src.r.ReadBytes('\n')
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(string(line)) == "" {
			continue
		}

		at, code, data, err := parseAsciicastEvent(line)
		if err != nil {
			return nil, err
		}

		entry := &Entry{TimestampMicros: secondsToMicroseconds(at), Data: []byte(data)}
		switch code {
		case castInput:
			entry.FD = FDStdin
		case castOutput:
			entry.FD = FDStdout
			if unwrapped, ok := unwrapStderr(data); ok {
				entry.FD = FDStderr
				entry.Data = []byte(unwrapped)
			}
		default:
			continue
		}
		return entry, nil
	}
}

func (src *AsciicastLogSource) readHeader() error {
	line, err := src.r.ReadBytes('\n')
	if err != nil {
		return err
	}

	var header asciicastHeader
	if err := json.Unmarshal(line, &header); err != nil {
		return fmt.Errorf("malformed asciicast header: %w", err)
	}
	if header.Version != 2 {
		return fmt.Errorf("unsupported asciicast version %d", header.Version)
	}
	src.header = &header
	return nil
}

func parseAsciicastEvent(line []byte) (at float64, code, data string, err error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return 0, "", "", err
	}
	if len(fields) != 3 {
		return 0, "", "", fmt.Errorf("malformed event, expected 3 fields got %d", len(fields))
	}

	if err := json.Unmarshal(fields[0], &at); err != nil {
		return 0, "", "", fmt.Errorf("malformed event time: %w", err)
	}
	if err := json.Unmarshal(fields[1], &code); err != nil {
		return 0, "", "", fmt.Errorf("malformed event type: %w", err)
	}
	if err := json.Unmarshal(fields[2], &data); err != nil {
		return 0, "", "", fmt.Errorf("malformed event data: %w", err)
	}
	return at, code, data, nil
}

func unwrapStderr(data string) (string, bool) {
	if len(data) < len(stderrStart)+len(stderrEnd) ||
		!strings.HasPrefix(data, stderrStart) || !strings.HasSuffix(data, stderrEnd) {
		return data, false
	}
	return data[len(stderrStart) : len(data)-len(stderrEnd)], true
}

func microsecondsToSeconds(microseconds int64) (seconds float64) {
	return (float64(microseconds) * float64(time.Microsecond)) / float64(time.Second)
}

func secondsToMicroseconds(seconds float64) (microseconds int64) {
	return int64(float64(seconds)*float64(time.Second)) / int64(time.Microsecond)
}
