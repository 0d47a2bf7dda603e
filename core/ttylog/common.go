// Package ttylog records and plays back terminal sessions.
package ttylog

import (
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FD identifies the stream a chunk of terminal data travelled on.
type FD int

const (
	FDStdin  FD = 0
	FDStdout FD = 1
	FDStderr FD = 2
)

// Entry is one chunk of recorded terminal IO.
type Entry struct {
	TimestampMicros int64
	FD              FD
	Data            []byte
}

// LogSink receives log events.
type LogSink func(e *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the source
	// has no more log entries.
	Next() (*Entry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Entry) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		sleepDuration := time.Duration(delta) * time.Microsecond
		if maxSleep > 0 && sleepDuration > maxSleep {
			sleepDuration = maxSleep
		}
		if sleepDuration > 0 {
			time.Sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewClientOutput writes stdout and stderr to the given writer
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Entry) error {
		if e.FD == FDStdin {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}

// Recorder tees a terminal's streams into a LogSink.
type Recorder struct {
	mutex  sync.Mutex
	output LogSink
	now    func() time.Time

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRecorder creates a recorder that forwards all IO on the given streams to
// output.
func NewRecorder(stdin io.Reader, stdout, stderr io.Writer, output LogSink) *Recorder {
	r := &Recorder{output: output, now: time.Now}
	r.stdin = &recordingReader{r: r, fd: FDStdin, wrapped: stdin}
	r.stdout = &recordingWriter{r: r, fd: FDStdout, wrapped: stdout}
	r.stderr = &recordingWriter{r: r, fd: FDStderr, wrapped: stderr}
	return r
}

// Stdin returns the recorded input stream.
func (r *Recorder) Stdin() io.Reader { return r.stdin }

// Stdout returns the recorded output stream.
func (r *Recorder) Stdout() io.Writer { return r.stdout }

// Stderr returns the recorded error stream.
func (r *Recorder) Stderr() io.Writer { return r.stderr }

func (r *Recorder) record(fd FD, data []byte) {
	if len(data) == 0 {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	err := r.output(&Entry{
		TimestampMicros: r.now().UnixMicro(),
		FD:              fd,
		Data:            append([]byte(nil), data...),
	})
	if err != nil {
		log.Print(err)
	}
}

type recordingReader struct {
	r       *Recorder
	fd      FD
	wrapped io.Reader
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	n, err := rr.wrapped.Read(p)
	rr.r.record(rr.fd, p[:n])
	return n, err
}

type recordingWriter struct {
	r       *Recorder
	fd      FD
	wrapped io.Writer
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	n, err := rw.wrapped.Write(p)
	rw.r.record(rw.fd, p[:n])
	return n, err
}

// NewLogSink picks a recording format from the extension of name: asciicast
// for ".cast" and user-mode-linux otherwise. dir is the shell's starting
// directory, only asciicast keeps it.
func NewLogSink(name string, w io.Writer, dir string) LogSink {
	if strings.TrimPrefix(filepath.Ext(name), ".") == AsciicastFileExt {
		return NewAsciicastLogSink(w, dir)
	}
	return NewUMLLogSink(w)
}

// NewLogSource reads a recording written by the sink NewLogSink picks for
// name.
func NewLogSource(name string, r io.Reader) LogSource {
	if strings.TrimPrefix(filepath.Ext(name), ".") == AsciicastFileExt {
		return NewAsciicastLogSource(r)
	}
	return NewUMLLogSource(r)
}
