// Package pathdiff compares the execution paths of two runs: which
// functions ran at all, and where the ordered call sequences diverge.
package pathdiff

import (
	"sort"

	"github.com/tracescope/tracescope/internal/trace"
)

type (
	// Call is one Enter event reduced to its identity for comparison.
	Call struct {
		Function string `json:"function"`
		Depth    uint32 `json:"depth"`
	}

	// Path is the execution path derived from one trace, built once and
	// never mutated.
	Path struct {
		Calls     []Call
		Functions map[string]struct{}
	}

	// Mismatch is one position where the two sequences disagree. A nil side
	// means that sequence had already ended.
	Mismatch struct {
		Index int   `json:"index"`
		A     *Call `json:"a"`
		B     *Call `json:"b"`
	}

	// Diff is the outcome of comparing two paths. Function lists are sorted.
	Diff struct {
		OnlyInA      []string   `json:"only_in_a"`
		OnlyInB      []string   `json:"only_in_b"`
		Common       []string   `json:"common"`
		SequenceDiff []Mismatch `json:"sequence_differences"`
	}
)

// FromEvents builds the execution path of a trace from its Enter events,
// preserving stream order.
func FromEvents(events []trace.Event) *Path {
	p := &Path{Functions: make(map[string]struct{})}
	for _, e := range events {
		if e.Kind != trace.KindEnter {
			continue
		}
		p.Calls = append(p.Calls, Call{Function: e.Function, Depth: e.Depth})
		p.Functions[e.Function] = struct{}{}
	}
	return p
}

// Compute compares two execution paths position by position. It makes no
// attempt at subsequence alignment: a single insertion shifts every later
// index, and that is the documented contract.
func Compute(a, b *Path) Diff {
	d := Diff{
		OnlyInA: setDifference(a.Functions, b.Functions),
		OnlyInB: setDifference(b.Functions, a.Functions),
		Common:  setIntersection(a.Functions, b.Functions),
	}

	shorter := len(a.Calls)
	if len(b.Calls) < shorter {
		shorter = len(b.Calls)
	}
	for i := 0; i < shorter; i++ {
		if a.Calls[i] != b.Calls[i] {
			ca, cb := a.Calls[i], b.Calls[i]
			d.SequenceDiff = append(d.SequenceDiff, Mismatch{Index: i, A: &ca, B: &cb})
		}
	}
	for i := shorter; i < len(a.Calls); i++ {
		ca := a.Calls[i]
		d.SequenceDiff = append(d.SequenceDiff, Mismatch{Index: i, A: &ca})
	}
	for i := shorter; i < len(b.Calls); i++ {
		cb := b.Calls[i]
		d.SequenceDiff = append(d.SequenceDiff, Mismatch{Index: i, B: &cb})
	}
	return d
}

// Identical reports whether the diff shows two equal execution paths.
func (d Diff) Identical() bool {
	return len(d.OnlyInA) == 0 && len(d.OnlyInB) == 0 && len(d.SequenceDiff) == 0
}

func setDifference(a, b map[string]struct{}) []string {
	var out []string
	for f := range a {
		if _, ok := b[f]; !ok {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func setIntersection(a, b map[string]struct{}) []string {
	var out []string
	for f := range a {
		if _, ok := b[f]; ok {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
