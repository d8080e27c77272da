package filter

import "strings"

// Match reports whether text matches pattern. The only metacharacter is '*',
// which matches zero or more characters; everything else is literal. The
// match is case-sensitive and anchored at both ends. An empty pattern
// matches nothing.
func Match(pattern, text string) bool {
	if pattern == "" {
		return false
	}
	segments := strings.Split(pattern, "*")
	if len(segments) == 1 {
		return pattern == text
	}
	if !strings.HasPrefix(text, segments[0]) {
		return false
	}
	text = text[len(segments[0]):]
	// Middle segments match greedily left to right, which leaves the most
	// room for the anchored suffix.
	for _, segment := range segments[1 : len(segments)-1] {
		if segment == "" {
			continue
		}
		i := strings.Index(text, segment)
		if i < 0 {
			return false
		}
		text = text[i+len(segment):]
	}
	return strings.HasSuffix(text, segments[len(segments)-1])
}

func matchesAny(text string, patterns []string) bool {
	if text == "" || len(patterns) == 0 {
		return false
	}
	for _, p := range patterns {
		if Match(p, text) {
			return true
		}
	}
	return false
}
