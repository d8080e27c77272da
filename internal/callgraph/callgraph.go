// Package callgraph reconstructs caller→callee relationships from the
// Enter/Exit pairing of a trace. Each thread gets its own logical call
// stack, so interleaved threads never pollute each other's nesting.
package callgraph

import (
	"sort"

	"github.com/tracescope/tracescope/internal/filter"
	"github.com/tracescope/tracescope/internal/trace"
)

type (
	// Edge accumulates the weight of one caller→callee pair.
	Edge struct {
		Count      uint64 `json:"count"`
		DurationNS uint64 `json:"duration_ns"`
	}

	// Node is one function in the graph with its incoming and outgoing edges.
	Node struct {
		Function        string           `json:"function"`
		CallCount       uint64           `json:"call_count"`
		TotalDurationNS uint64           `json:"total_duration_ns"`
		Callees         map[string]*Edge `json:"callees,omitempty"`
		Callers         map[string]*Edge `json:"callers,omitempty"`
	}

	// Graph owns the node set. Roots is filled by finalize: every function
	// that never appeared as a callee, sorted for deterministic traversal.
	Graph struct {
		Nodes map[string]*Node `json:"nodes"`
		Roots []string         `json:"roots"`

		// OrphanExits counts Exit events that had no matching Enter on
		// their thread's stack. They are skipped, not fatal.
		OrphanExits uint64 `json:"orphan_exits,omitempty"`
	}

	stackFrame struct {
		function string
		enterNS  uint64
	}
)

func (g *Graph) node(function string) *Node {
	n, ok := g.Nodes[function]
	if !ok {
		n = &Node{
			Function: function,
			Callees:  make(map[string]*Edge),
			Callers:  make(map[string]*Edge),
		}
		g.Nodes[function] = n
	}
	return n
}

func (g *Graph) addEdge(caller, callee string, durationNS uint64) {
	callerNode := g.node(caller)
	calleeNode := g.node(callee)

	out, ok := callerNode.Callees[callee]
	if !ok {
		out = &Edge{}
		callerNode.Callees[callee] = out
	}
	out.Count++
	out.DurationNS += durationNS

	in, ok := calleeNode.Callers[caller]
	if !ok {
		in = &Edge{}
		calleeNode.Callers[caller] = in
	}
	in.Count++
	in.DurationNS += durationNS
}

func (g *Graph) finalize() {
	for function, n := range g.Nodes {
		if len(n.Callers) == 0 {
			g.Roots = append(g.Roots, function)
		}
	}
	sort.Strings(g.Roots)
}

// Build reconstructs the call graph from the events that pass f. An Exit
// that pops an empty stack is counted as an orphan and skipped.
func Build(events []trace.Event, f *filter.EventFilter) *Graph {
	g := &Graph{Nodes: make(map[string]*Node)}
	stacks := make(map[uint32][]stackFrame)

	for _, e := range f.Apply(events) {
		switch e.Kind {
		case trace.KindEnter:
			stacks[e.ThreadID] = append(stacks[e.ThreadID], stackFrame{
				function: e.Function,
				enterNS:  e.TimestampNS,
			})
		case trace.KindExit:
			stack := stacks[e.ThreadID]
			if len(stack) == 0 {
				g.OrphanExits++
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stacks[e.ThreadID] = stack

			duration := e.TimestampNS - top.enterNS
			n := g.node(top.function)
			n.CallCount++
			n.TotalDurationNS += duration
			if len(stack) > 0 {
				g.addEdge(stack[len(stack)-1].function, top.function, duration)
			}
		}
	}

	g.finalize()
	return g
}
