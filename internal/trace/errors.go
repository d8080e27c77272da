package trace

import "errors"

// ErrBadMagic means the file does not start with the TRCLOG10 magic bytes,
// which usually means it is not a trace file at all.
var ErrBadMagic = errors.New("trace: bad magic")

// ErrUnsupportedVersion means the header carries a version outside the
// supported range, which usually means the file was written by a newer tool.
var ErrUnsupportedVersion = errors.New("trace: unsupported format version")

// ErrTruncatedHeader means the stream ended inside the 16-byte file header.
var ErrTruncatedHeader = errors.New("trace: truncated header")

// ErrTruncatedEvent means the stream ended in the middle of an event record,
// which indicates an incomplete write rather than a clean end of file.
var ErrTruncatedEvent = errors.New("trace: truncated event")
