package filter

import (
	"fmt"
	"strconv"
)

// ParseThreadID parses a thread id in decimal or 0x-prefixed hex notation,
// the two forms the producers emit.
func ParseThreadID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid thread id %q: %w", s, err)
	}
	return uint32(v), nil
}
