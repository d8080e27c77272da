package trace

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encoder writes the binary trace format. It mirrors the write path of the
// native tracing library and exists mainly for fixtures and round-trip tests.
type Encoder struct {
	w       *bufio.Writer
	version uint32
}

func NewEncoder(w io.Writer, version uint32) (*Encoder, error) {
	if version < MinVersion || version > MaxVersion {
		return nil, fmt.Errorf("%w: %d (supported: %d to %d)", ErrUnsupportedVersion, version, MinVersion, MaxVersion)
	}
	return &Encoder{w: bufio.NewWriter(w), version: version}, nil
}

func (e *Encoder) WriteHeader() error {
	var buf [headerSize]byte
	copy(buf[:8], Magic)
	binary.LittleEndian.PutUint32(buf[8:12], e.version)
	// buf[12:16] is reserved padding, written as zero.
	_, err := e.w.Write(buf[:])
	return err
}

func (e *Encoder) WriteEvent(ev Event) error {
	e.w.WriteByte(byte(ev.Kind))
	e.writeU32(ev.ThreadID)
	if e.version >= 2 {
		e.w.WriteByte(ev.ColorOffset)
	}
	e.writeU64(ev.TimestampNS)
	e.writeU32(ev.Depth)
	e.writeU64(ev.DurationNS)
	if e.version >= 2 {
		e.writeU64(ev.MemoryRSS)
	}
	e.writeString(ev.File)
	e.writeString(ev.Function)
	e.writeString(ev.Message)
	e.writeU32(ev.Line)
	// bufio sticks to the first error, checking once at the end is enough.
	return e.w.Flush()
}

func (e *Encoder) writeU32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	e.w.Write(buf[:])
}

func (e *Encoder) writeU64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	e.w.Write(buf[:])
}

func (e *Encoder) writeString(s string) {
	if len(s) > math.MaxUint16 {
		s = s[:math.MaxUint16]
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(len(s)))
	e.w.Write(buf[:])
	e.w.WriteString(s)
}

// Encode writes a header followed by events to w.
func Encode(w io.Writer, version uint32, events []Event) error {
	enc, err := NewEncoder(w, version)
	if err != nil {
		return err
	}
	if err := enc.WriteHeader(); err != nil {
		return err
	}
	for _, ev := range events {
		if err := enc.WriteEvent(ev); err != nil {
			return err
		}
	}
	return enc.w.Flush()
}
