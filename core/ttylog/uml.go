package ttylog

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"
)

// UMLFileExt is the suggested extension for user-mode-linux recordings.
const UMLFileExt = "log"

type umlOp int32

const (
	opOpen  umlOp = 1
	opClose umlOp = 2
	opWrite umlOp = 3
	opExec  umlOp = 4
)

type umlDir int32

const (
	dirRead  umlDir = 1
	dirWrite umlDir = 2
)

type umlEvent struct {
	Operation    int32  // Operation, maps into umlOp.
	Tty          uint32 // Should always be 0.
	Size         int32  // Number of bytes following this event that represent the data.
	Direction    int32  // Data direction, maps into umlDir.
	Seconds      uint32 // UNIX timestamp of the event.
	Microseconds uint32 // Microseconds after the timestamp of the event.
}

// NewUMLLogSink creates a LogSink compatible with the user-mode-linux TTY
// recording format. It's compact but can't tell stdout from stderr.
func NewUMLLogSink(w io.Writer) LogSink {
	return func(e *Entry) error {
		direction := dirWrite
		if e.FD == FDStdin {
			direction = dirRead
		}

		header := umlEvent{
			Operation:    int32(opWrite),
			Size:         int32(len(e.Data)),
			Direction:    int32(direction),
			Seconds:      uint32(e.TimestampMicros / int64(time.Second/time.Microsecond)),
			Microseconds: uint32(e.TimestampMicros % int64(time.Second/time.Microsecond)),
		}
		if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
			return err
		}

		_, err := w.Write(e.Data)
		return err
	}
}

// UMLLogSource parses log events from a user-mode-linux formatted file.
type UMLLogSource struct {
	r io.Reader
}

var _ LogSource = (*UMLLogSource)(nil)

// NewUMLLogSource reads log events from a user-mode-linux formatted file.
func NewUMLLogSource(r io.Reader) *UMLLogSource {
	return &UMLLogSource{r: r}
}

// Next gets the next log entry, it returns io.EOF if there are no more.
func (log *UMLLogSource) Next() (*Entry, error) {
	header := &umlEvent{}
	buf := &bytes.Buffer{}

	for {
		if err := binary.Read(log.r, binary.LittleEndian, header); err != nil {
			return nil, io.EOF
		}
		buf.Reset()
		if _, err := io.CopyN(buf, log.r, int64(header.Size)); err != nil {
			return nil, err
		}

		logTime := int64(header.Seconds)*int64(time.Second/time.Microsecond) + int64(header.Microseconds)

		// Stderr was folded into stdout when the file was written.
		fd := FDStdout
		if umlDir(header.Direction) == dirRead {
			fd = FDStdin
		}

		switch umlOp(header.Operation) {
		case opWrite:
			return &Entry{
				TimestampMicros: logTime,
				FD:              fd,
				Data:            buf.Bytes(),
			}, nil
		case opOpen, opClose, opExec:
			fallthrough
		default:
			// Skip non-I/O operations
			continue
		}
	}
}
