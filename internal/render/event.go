// Package render formats decoded events for terminal output: timeline
// lines, auto-scaled units, and thread-aware ANSI coloring.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/tracescope/tracescope/internal/trace"
)

// Palette is the ANSI color table used for thread-aware coloring. It is an
// explicit value handed to the printer; there is no process-wide table.
type Palette []string

const Reset = "\033[0m"

// DefaultPalette matches the 8-color table of the native tracing library.
func DefaultPalette() Palette {
	return Palette{
		"\033[31m", // red
		"\033[32m", // green
		"\033[33m", // yellow
		"\033[34m", // blue
		"\033[35m", // magenta
		"\033[36m", // cyan
		"\033[37m", // white
		"\033[91m", // bright red
	}
}

// colorFor picks the palette entry for an event from its depth and the
// per-thread color offset recorded by the producer.
func (p Palette) colorFor(e trace.Event) (string, string) {
	if len(p) == 0 {
		return "", ""
	}
	return p[(int(e.Depth)+int(e.ColorOffset))%len(p)], Reset
}

// EventOptions controls the timeline rendering of a single event.
type EventOptions struct {
	// Palette enables colored output when non-empty.
	Palette Palette

	// ShowTiming appends the duration to Exit lines.
	ShowTiming bool

	// ShowTimestamp prefixes every line with the raw timestamp.
	ShowTimestamp bool
}

// WriteEvent renders one event as a timeline line: depth indentation, an
// arrow marker per kind, and the source location.
func WriteEvent(w io.Writer, e trace.Event, opts EventOptions) error {
	colorStart, colorEnd := opts.Palette.colorFor(e)

	var sb strings.Builder
	if opts.ShowTimestamp {
		fmt.Fprintf(&sb, "[%16d] ", e.TimestampNS)
	}
	fmt.Fprintf(&sb, "[tid:0x%08x] ", e.ThreadID)
	sb.WriteString(colorStart)
	for i := uint32(0); i < e.Depth; i++ {
		sb.WriteString("| ")
	}
	switch e.Kind {
	case trace.KindEnter:
		fmt.Fprintf(&sb, "-> %s", e.Function)
	case trace.KindExit:
		fmt.Fprintf(&sb, "<- %s", e.Function)
		if opts.ShowTiming {
			fmt.Fprintf(&sb, "  [%s]", FormatDuration(e.DurationNS))
		}
	default:
		fmt.Fprintf(&sb, "- %s", e.Message)
	}
	sb.WriteString(colorEnd)
	fmt.Fprintf(&sb, " (%s:%d)\n", e.File, e.Line)

	_, err := io.WriteString(w, sb.String())
	return err
}
