// Package stats aggregates per-function performance summaries from a
// filtered event stream. Only Exit events carry a duration, so only those
// contribute.
package stats

import (
	"sort"

	"github.com/tracescope/tracescope/internal/filter"
	"github.com/tracescope/tracescope/internal/trace"
)

type (
	// FunctionStat accumulates the timings of one function. MemoryDelta is
	// the maximum RSS observed among the function's Exit events.
	FunctionStat struct {
		Calls       uint64  `json:"calls"`
		TotalNS     uint64  `json:"total_ns"`
		AvgNS       float64 `json:"avg_ns"`
		MinNS       uint64  `json:"min_ns"`
		MaxNS       uint64  `json:"max_ns"`
		MemoryDelta uint64  `json:"memory_delta"`
	}

	// Global maps function name to its aggregate over the whole trace.
	Global map[string]*FunctionStat

	// PerThread maps thread id to that thread's per-function aggregates.
	PerThread map[uint32]Global
)

func (s *FunctionStat) record(durationNS, memoryRSS uint64) {
	if s.Calls == 0 || durationNS < s.MinNS {
		s.MinNS = durationNS
	}
	if durationNS > s.MaxNS {
		s.MaxNS = durationNS
	}
	if memoryRSS > s.MemoryDelta {
		s.MemoryDelta = memoryRSS
	}
	s.Calls++
	s.TotalNS += durationNS
}

func (s *FunctionStat) finalize() {
	if s.Calls > 0 {
		s.AvgNS = float64(s.TotalNS) / float64(s.Calls)
	}
}

// Compute aggregates global and per-thread statistics over the events that
// pass f.
func Compute(events []trace.Event, f *filter.EventFilter) (Global, PerThread) {
	global := make(Global)
	threads := make(PerThread)

	for _, e := range f.Apply(events) {
		if e.Kind != trace.KindExit || e.Function == "" {
			continue
		}

		gs, ok := global[e.Function]
		if !ok {
			gs = &FunctionStat{}
			global[e.Function] = gs
		}
		gs.record(e.DurationNS, e.MemoryRSS)

		ts, ok := threads[e.ThreadID]
		if !ok {
			ts = make(Global)
			threads[e.ThreadID] = ts
		}
		fs, ok := ts[e.Function]
		if !ok {
			fs = &FunctionStat{}
			ts[e.Function] = fs
		}
		fs.record(e.DurationNS, e.MemoryRSS)
	}

	for _, s := range global {
		s.finalize()
	}
	for _, ts := range threads {
		for _, s := range ts {
			s.finalize()
		}
	}
	return global, threads
}

// SortOrder selects the presentation order of a statistics table.
type SortOrder string

const (
	SortByTotal SortOrder = "total"
	SortByCalls SortOrder = "calls"
	SortByAvg   SortOrder = "avg"
	SortByName  SortOrder = "name"
)

// Entry pairs a function name with its aggregate for ordered presentation.
type Entry struct {
	Function string
	*FunctionStat
}

// Sorted flattens g into a slice ordered by the requested key. Numeric keys
// sort descending, name sorts ascending; name breaks numeric ties so output
// is deterministic.
func Sorted(g Global, order SortOrder) []Entry {
	entries := make([]Entry, 0, len(g))
	for function, s := range g {
		entries = append(entries, Entry{Function: function, FunctionStat: s})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch order {
		case SortByCalls:
			if a.Calls != b.Calls {
				return a.Calls > b.Calls
			}
		case SortByAvg:
			if a.AvgNS != b.AvgNS {
				return a.AvgNS > b.AvgNS
			}
		case SortByName:
		default:
			if a.TotalNS != b.TotalNS {
				return a.TotalNS > b.TotalNS
			}
		}
		return a.Function < b.Function
	})
	return entries
}
