package callgraph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tracescope/tracescope/internal/filter"
	"github.com/tracescope/tracescope/internal/testutil"
	"github.com/tracescope/tracescope/internal/trace"
)

func enter(function string, tid uint32, ts uint64) trace.Event {
	return trace.Event{Kind: trace.KindEnter, ThreadID: tid, Function: function, TimestampNS: ts}
}

func exit(function string, tid uint32, ts uint64) trace.Event {
	return trace.Event{Kind: trace.KindExit, ThreadID: tid, Function: function, TimestampNS: ts}
}

func TestBuildSimpleNesting(t *testing.T) {
	// main -> foo -> (return) -> (return)
	events := []trace.Event{
		enter("main", 1, 0),
		enter("foo", 1, 10),
		exit("foo", 1, 30),
		exit("main", 1, 100),
	}
	g := Build(events, filter.New())

	if diff := testutil.Diff([]string{"main"}, g.Roots); diff != "" {
		t.Fatalf("roots mismatch: %s", diff)
	}

	main := g.Nodes["main"]
	edge, ok := main.Callees["foo"]
	if !ok {
		t.Fatal("missing main→foo edge")
	}
	if edge.Count != 1 || edge.DurationNS != 20 {
		t.Fatalf("edge main→foo: got %+v, want count=1 duration=20", edge)
	}

	foo := g.Nodes["foo"]
	if len(foo.Callees) != 0 {
		t.Fatalf("foo should have no callees, got %v", foo.Callees)
	}
	if foo.CallCount != 1 || foo.TotalDurationNS != 20 {
		t.Fatalf("foo totals: got count=%d duration=%d", foo.CallCount, foo.TotalDurationNS)
	}
	if main.CallCount != 1 || main.TotalDurationNS != 100 {
		t.Fatalf("main totals: got count=%d duration=%d", main.CallCount, main.TotalDurationNS)
	}
}

func TestBuildEdgeAccumulation(t *testing.T) {
	events := []trace.Event{
		enter("main", 1, 0),
		enter("foo", 1, 10),
		exit("foo", 1, 20),
		enter("foo", 1, 30),
		exit("foo", 1, 45),
		exit("main", 1, 100),
	}
	g := Build(events, filter.New())

	edge := g.Nodes["main"].Callees["foo"]
	if edge.Count != 2 || edge.DurationNS != 25 {
		t.Fatalf("edge main→foo: got %+v, want count=2 duration=25", edge)
	}
	reverse := g.Nodes["foo"].Callers["main"]
	if diff := testutil.Diff(edge, reverse); diff != "" {
		t.Fatalf("caller edge should mirror callee edge: %s", diff)
	}
}

func TestBuildInterleavedThreads(t *testing.T) {
	// Two threads interleave; per-thread stacks must keep them apart.
	events := []trace.Event{
		enter("a_main", 1, 0),
		enter("b_main", 2, 5),
		enter("a_leaf", 1, 10),
		enter("b_leaf", 2, 15),
		exit("b_leaf", 2, 25),
		exit("a_leaf", 1, 30),
		exit("a_main", 1, 40),
		exit("b_main", 2, 50),
	}
	g := Build(events, filter.New())

	if diff := testutil.Diff([]string{"a_main", "b_main"}, g.Roots); diff != "" {
		t.Fatalf("roots mismatch: %s", diff)
	}
	if edge := g.Nodes["a_main"].Callees["a_leaf"]; edge.Count != 1 || edge.DurationNS != 20 {
		t.Fatalf("a_main→a_leaf: got %+v", edge)
	}
	if edge := g.Nodes["b_main"].Callees["b_leaf"]; edge.Count != 1 || edge.DurationNS != 10 {
		t.Fatalf("b_main→b_leaf: got %+v", edge)
	}
	if _, ok := g.Nodes["a_main"].Callees["b_leaf"]; ok {
		t.Fatal("threads bled into each other")
	}
	if g.OrphanExits != 0 {
		t.Fatalf("got %d orphan exits, want 0", g.OrphanExits)
	}
}

func TestBuildOrphanExitSkipped(t *testing.T) {
	events := []trace.Event{
		exit("ghost", 1, 10),
		enter("main", 1, 20),
		exit("main", 1, 50),
	}
	g := Build(events, filter.New())

	if g.OrphanExits != 1 {
		t.Fatalf("got %d orphan exits, want 1", g.OrphanExits)
	}
	if _, ok := g.Nodes["ghost"]; ok {
		t.Fatal("orphan exit must not create a node")
	}
	if diff := testutil.Diff([]string{"main"}, g.Roots); diff != "" {
		t.Fatalf("roots mismatch: %s", diff)
	}
}

func TestBuildMessageEventsIgnored(t *testing.T) {
	events := []trace.Event{
		enter("main", 1, 0),
		{Kind: trace.KindMessage, ThreadID: 1, Message: "hello", TimestampNS: 5},
		exit("main", 1, 10),
	}
	g := Build(events, filter.New())
	if len(g.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(g.Nodes))
	}
}

func TestWriteTree(t *testing.T) {
	events := []trace.Event{
		enter("main", 1, 0),
		enter("hot", 1, 10),
		exit("hot", 1, 20),
		enter("hot", 1, 25),
		exit("hot", 1, 35),
		enter("cold", 1, 40),
		exit("cold", 1, 45),
		exit("main", 1, 100),
	}
	g := Build(events, filter.New())

	var buf bytes.Buffer
	if err := WriteTree(&buf, g, DefaultTreeOptions()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"main (1 calls, 100 ns)",
		"├─   hot (2 calls, 20 ns)",
		"└─   cold (1 calls, 5 ns)",
	}
	if diff := testutil.Diff(want, lines); diff != "" {
		t.Fatalf("tree mismatch: %s", diff)
	}
}

func TestWriteTreeMinCalls(t *testing.T) {
	events := []trace.Event{
		enter("main", 1, 0),
		enter("once", 1, 10),
		exit("once", 1, 20),
		exit("main", 1, 100),
	}
	g := Build(events, filter.New())

	var buf bytes.Buffer
	opts := DefaultTreeOptions()
	opts.MinCalls = 2
	if err := WriteTree(&buf, g, opts); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "once") {
		t.Fatalf("cold callee should be hidden:\n%s", buf.String())
	}
}

func TestWriteDOT(t *testing.T) {
	events := []trace.Event{
		enter("main", 1, 0),
		enter("foo", 1, 10),
		exit("foo", 1, 30),
		exit("main", 1, 100),
	}
	g := Build(events, filter.New())

	var buf bytes.Buffer
	if err := WriteDOT(&buf, g); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, fragment := range []string{
		"digraph CallGraph {",
		`"main" [label="main\n1 calls", fillcolor="lightblue"];`,
		`"main" -> "foo" [label="1"];`,
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("dot output missing %q:\n%s", fragment, out)
		}
	}
}
