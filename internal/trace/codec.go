package trace

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// Magic identifies a trace file.
const Magic = "TRCLOG10"

// Supported format versions. Version 2 added the color offset and memory RSS
// fields; everything else is layout-identical to version 1.
const (
	MinVersion uint32 = 1
	MaxVersion uint32 = 2
)

const headerSize = 16

// Decoder reads a binary trace stream. Call ReadHeader once, then Next until
// it returns io.EOF. io.EOF is only returned at an event boundary; a stream
// that ends mid-event yields an error wrapping ErrTruncatedEvent instead.
type Decoder struct {
	r       *bufio.Reader
	version uint32
	offset  int64
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Version returns the format version read by ReadHeader.
func (d *Decoder) Version() uint32 { return d.version }

// Offset returns the number of bytes consumed from the stream so far.
func (d *Decoder) Offset() int64 { return d.offset }

// ReadHeader validates the magic bytes and the format version.
func (d *Decoder) ReadHeader() (uint32, error) {
	var buf [headerSize]byte
	n, err := io.ReadFull(d.r, buf[:])
	d.offset += int64(n)
	if err != nil {
		return 0, fmt.Errorf("%w: read %d of %d bytes", ErrTruncatedHeader, n, headerSize)
	}
	if string(buf[:8]) != Magic {
		return 0, fmt.Errorf("%w: got %q, want %q", ErrBadMagic, buf[:8], Magic)
	}
	version := binary.LittleEndian.Uint32(buf[8:12])
	// buf[12:16] is reserved padding.
	if version < MinVersion || version > MaxVersion {
		return 0, fmt.Errorf("%w: %d (supported: %d to %d)", ErrUnsupportedVersion, version, MinVersion, MaxVersion)
	}
	d.version = version
	return version, nil
}

// Next decodes the next event. It returns io.EOF once the stream is
// exhausted at an event boundary.
func (d *Decoder) Next() (Event, error) {
	var e Event
	kind, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return e, io.EOF
		}
		return e, fmt.Errorf("trace: reading kind at offset %d: %w", d.offset, err)
	}
	d.offset++
	e.Kind = Kind(kind)
	if e.ThreadID, err = d.readU32("thread id"); err != nil {
		return e, err
	}
	if d.version >= 2 {
		if e.ColorOffset, err = d.readU8("color offset"); err != nil {
			return e, err
		}
	}
	if e.TimestampNS, err = d.readU64("timestamp"); err != nil {
		return e, err
	}
	if e.Depth, err = d.readU32("depth"); err != nil {
		return e, err
	}
	if e.DurationNS, err = d.readU64("duration"); err != nil {
		return e, err
	}
	if d.version >= 2 {
		if e.MemoryRSS, err = d.readU64("memory rss"); err != nil {
			return e, err
		}
	}
	if e.File, err = d.readString("file"); err != nil {
		return e, err
	}
	if e.Function, err = d.readString("function"); err != nil {
		return e, err
	}
	if e.Message, err = d.readString("message"); err != nil {
		return e, err
	}
	if e.Line, err = d.readU32("line"); err != nil {
		return e, err
	}
	return e, nil
}

func (d *Decoder) readField(buf []byte, field string) error {
	n, err := io.ReadFull(d.r, buf)
	d.offset += int64(n)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %s at offset %d", ErrTruncatedEvent, field, d.offset)
	}
	if err != nil {
		return fmt.Errorf("trace: reading %s at offset %d: %w", field, d.offset, err)
	}
	return nil
}

func (d *Decoder) readU8(field string) (uint8, error) {
	var buf [1]byte
	if err := d.readField(buf[:], field); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *Decoder) readU32(field string) (uint32, error) {
	var buf [4]byte
	if err := d.readField(buf[:], field); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (d *Decoder) readU64(field string) (uint64, error) {
	var buf [8]byte
	if err := d.readField(buf[:], field); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// readString reads a 2-byte length prefix followed by that many UTF-8 bytes.
// Undecodable bytes are replaced, not rejected.
func (d *Decoder) readString(field string) (string, error) {
	var buf [2]byte
	if err := d.readField(buf[:], field+" length"); err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint16(buf[:])
	if n == 0 {
		return "", nil
	}
	b := make([]byte, n)
	if err := d.readField(b, field); err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}

// Decode reads a complete trace from r.
func Decode(r io.Reader) (*Trace, error) {
	d := NewDecoder(r)
	version, err := d.ReadHeader()
	if err != nil {
		return nil, err
	}
	t := &Trace{FormatVersion: version}
	for {
		e, err := d.Next()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, err
		}
		t.Events = append(t.Events, e)
	}
}

// DecodeFile reads a complete trace from the file at path.
func DecodeFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
