package render

import "fmt"

// FormatDuration renders a nanosecond duration with auto-scaled units,
// matching the output of the native tracing library.
func FormatDuration(ns uint64) string {
	switch {
	case ns < 1_000:
		return fmt.Sprintf("%d ns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%.2f us", float64(ns)/1_000)
	case ns < 1_000_000_000:
		return fmt.Sprintf("%.2f ms", float64(ns)/1_000_000)
	default:
		return fmt.Sprintf("%.3f s", float64(ns)/1_000_000_000)
	}
}

// FormatMemory renders a byte count with auto-scaled binary units.
func FormatMemory(bytes uint64) string {
	switch {
	case bytes < 1<<10:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1<<20:
		return fmt.Sprintf("%.2f KB", float64(bytes)/(1<<10))
	case bytes < 1<<30:
		return fmt.Sprintf("%.2f MB", float64(bytes)/(1<<20))
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/(1<<30))
	}
}
