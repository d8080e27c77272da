package trace

type (
	// Kind is the record kind of an event.
	Kind uint8

	// Event is one decoded trace record. Events are immutable once decoded.
	Event struct {
		Kind        Kind   `json:"kind"`
		ThreadID    uint32 `json:"thread_id"`
		ColorOffset uint8  `json:"color_offset,omitempty"`
		TimestampNS uint64 `json:"timestamp_ns"`
		Depth       uint32 `json:"depth"`
		DurationNS  uint64 `json:"duration_ns"`
		MemoryRSS   uint64 `json:"memory_rss_bytes,omitempty"`
		File        string `json:"file"`
		Function    string `json:"function"`
		Message     string `json:"message,omitempty"`
		Line        uint32 `json:"line"`
	}

	// Trace is a fully decoded trace file: the format version it was written
	// with and its events in stream order, interleaved across threads.
	Trace struct {
		FormatVersion uint32  `json:"format_version"`
		Events        []Event `json:"events"`
	}
)

const (
	KindEnter Kind = iota
	KindExit
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindEnter:
		return "enter"
	case KindExit:
		return "exit"
	case KindMessage:
		return "message"
	}
	return "unknown"
}
