// Package filter implements per-event trace filtering: wildcard patterns on
// function and file names, thread allow/deny sets, and a depth bound.
package filter

import "github.com/tracescope/tracescope/internal/trace"

// EventFilter is a pure predicate over decoded events. The zero value built
// by New accepts everything. Exclude rules always win over include rules.
type EventFilter struct {
	IncludeFunctions []string
	ExcludeFunctions []string
	IncludeFiles     []string
	ExcludeFiles     []string
	IncludeThreads   map[uint32]struct{}
	ExcludeThreads   map[uint32]struct{}

	// MaxDepth rejects events nested deeper; -1 means unbounded.
	MaxDepth int
}

func New() *EventFilter {
	return &EventFilter{
		IncludeThreads: make(map[uint32]struct{}),
		ExcludeThreads: make(map[uint32]struct{}),
		MaxDepth:       -1,
	}
}

// ShouldTrace reports whether e passes every configured check.
func (f *EventFilter) ShouldTrace(e trace.Event) bool {
	if f.MaxDepth >= 0 && e.Depth > uint32(f.MaxDepth) {
		return false
	}

	if e.Function != "" {
		if matchesAny(e.Function, f.ExcludeFunctions) {
			return false
		}
		if len(f.IncludeFunctions) > 0 && !matchesAny(e.Function, f.IncludeFunctions) {
			return false
		}
	}

	if e.File != "" {
		if matchesAny(e.File, f.ExcludeFiles) {
			return false
		}
		if len(f.IncludeFiles) > 0 && !matchesAny(e.File, f.IncludeFiles) {
			return false
		}
	}

	if _, excluded := f.ExcludeThreads[e.ThreadID]; excluded {
		return false
	}
	if len(f.IncludeThreads) > 0 {
		if _, included := f.IncludeThreads[e.ThreadID]; !included {
			return false
		}
	}

	return true
}

// Apply returns the events of t that pass f, in order.
func (f *EventFilter) Apply(events []trace.Event) []trace.Event {
	filtered := make([]trace.Event, 0, len(events))
	for _, e := range events {
		if f.ShouldTrace(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
