package callgraph

import (
	"fmt"
	"io"
	"sort"

	"github.com/tracescope/tracescope/internal/render"
)

// TreeOptions bounds the tree rendering. MaxDepth caps recursion so cyclic
// call relationships terminate; MinCalls hides cold edges.
type TreeOptions struct {
	MaxDepth int
	MinCalls uint64
}

func DefaultTreeOptions() TreeOptions {
	return TreeOptions{MaxDepth: 10, MinCalls: 1}
}

// WriteTree renders the graph as an indented tree, one root at a time in
// lexicographic order, callees ordered by descending call count.
func WriteTree(w io.Writer, g *Graph, opts TreeOptions) error {
	for _, root := range g.Roots {
		if err := writeNode(w, g, g.Nodes[root], 0, "", opts); err != nil {
			return err
		}
	}
	return nil
}

func writeNode(w io.Writer, g *Graph, n *Node, depth int, prefix string, opts TreeOptions) error {
	if depth > opts.MaxDepth {
		return nil
	}
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	_, err := fmt.Fprintf(w, "%s%s%s (%d calls, %s)\n",
		prefix, indent, n.Function, n.CallCount, render.FormatDuration(n.TotalDurationNS))
	if err != nil {
		return err
	}
	if depth >= opts.MaxDepth {
		return nil
	}
	callees := sortedCallees(n, opts.MinCalls)
	for i, callee := range callees {
		child, ok := g.Nodes[callee]
		if !ok {
			continue
		}
		childPrefix := "├─ "
		if i == len(callees)-1 {
			childPrefix = "└─ "
		}
		if err := writeNode(w, g, child, depth+1, childPrefix, opts); err != nil {
			return err
		}
	}
	return nil
}

func sortedCallees(n *Node, minCalls uint64) []string {
	callees := make([]string, 0, len(n.Callees))
	for name, edge := range n.Callees {
		if edge.Count >= minCalls {
			callees = append(callees, name)
		}
	}
	sort.Slice(callees, func(i, j int) bool {
		a, b := n.Callees[callees[i]], n.Callees[callees[j]]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return callees[i] < callees[j]
	})
	return callees
}

// WriteDOT exports the graph in GraphViz DOT format, colorizing nodes by
// call-count thresholds and labeling edges with their counts.
func WriteDOT(w io.Writer, g *Graph) error {
	if _, err := fmt.Fprint(w, "digraph CallGraph {\n  rankdir=TB;\n  node [shape=box, style=filled];\n\n"); err != nil {
		return err
	}
	for _, function := range sortedNodeNames(g) {
		n := g.Nodes[function]
		color := "lightblue"
		switch {
		case n.CallCount > 100:
			color = "red"
		case n.CallCount > 10:
			color = "orange"
		}
		if _, err := fmt.Fprintf(w, "  %q [label=\"%s\\n%d calls\", fillcolor=%q];\n",
			function, function, n.CallCount, color); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(w, "\n"); err != nil {
		return err
	}
	for _, function := range sortedNodeNames(g) {
		n := g.Nodes[function]
		callees := make([]string, 0, len(n.Callees))
		for callee := range n.Callees {
			callees = append(callees, callee)
		}
		sort.Strings(callees)
		for _, callee := range callees {
			if _, err := fmt.Fprintf(w, "  %q -> %q [label=\"%d\"];\n",
				function, callee, n.Callees[callee].Count); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprint(w, "}\n")
	return err
}

func sortedNodeNames(g *Graph) []string {
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
