package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tracescope/tracescope/internal/compare"
	"github.com/tracescope/tracescope/internal/filter"
	"github.com/tracescope/tracescope/internal/pathdiff"
	"github.com/tracescope/tracescope/internal/stats"
	"github.com/tracescope/tracescope/internal/trace"
)

func TestFilterFlagsBuild(t *testing.T) {
	ft := filterFlags{
		functions:      stringList{"compute_*"},
		excludeThreads: stringList{"0x2000", "12"},
		maxDepth:       3,
	}
	f, err := ft.build()
	if err != nil {
		t.Fatalf("build should succeed: %v", err)
	}
	if len(f.IncludeFunctions) != 1 || f.IncludeFunctions[0] != "compute_*" {
		t.Fatalf("unexpected include functions: %v", f.IncludeFunctions)
	}
	if _, ok := f.ExcludeThreads[0x2000]; !ok {
		t.Fatal("hex thread id should be excluded")
	}
	if _, ok := f.ExcludeThreads[12]; !ok {
		t.Fatal("decimal thread id should be excluded")
	}
	if f.MaxDepth != 3 {
		t.Fatalf("got max depth %d, want 3", f.MaxDepth)
	}
}

func TestFilterFlagsBuildRejectsBadThreadID(t *testing.T) {
	ft := filterFlags{threads: stringList{"not-a-number"}}
	if _, err := ft.build(); err == nil {
		t.Fatal("build should reject an unparseable thread id")
	}
}

func TestSortOrder(t *testing.T) {
	for _, name := range []string{"total", "calls", "avg", "name"} {
		if _, err := sortOrder(name); err != nil {
			t.Fatalf("%q should be a valid sort order: %v", name, err)
		}
	}
	if _, err := sortOrder("duration"); err == nil {
		t.Fatal("unknown sort order should be rejected")
	}
}

func TestWriteStatsTable(t *testing.T) {
	g := stats.Global{
		"compute": {Calls: 2, TotalNS: 3_000_000, AvgNS: 1_500_000, MinNS: 1_000_000, MaxNS: 2_000_000, MemoryDelta: 2048},
	}

	var buf bytes.Buffer
	writeStatsTable(&buf, "Global", g, stats.SortByTotal)

	out := buf.String()
	for _, fragment := range []string{"=== Global ===", "compute", "3.00 ms", "2.00 KB"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("table should contain %q:\n%s", fragment, out)
		}
	}
}

func TestWriteCompareReport(t *testing.T) {
	report := compare.Report{
		Regressions: []compare.Change{
			{Function: "slow", Metric: compare.MetricAvgNS, Baseline: 100, Current: 200, Delta: 100, PercentChange: 100, IsRegression: true},
			{Function: "restructured", Metric: compare.MetricCalls, Baseline: 1, Current: 2, Delta: 1, PercentChange: 100},
		},
		Improvements: []compare.Change{
			{Function: "fast", Metric: compare.MetricTotalNS, Baseline: 200, Current: 100, Delta: -100, PercentChange: -50},
		},
		NewFunctions:     []string{"fresh"},
		RemovedFunctions: []string{"gone"},
	}

	var buf bytes.Buffer
	writeCompareReport(&buf, report)

	out := buf.String()
	for _, fragment := range []string{
		"=== Regressions (2) ===",
		"! slow",
		"  restructured",
		"=== Improvements (1) ===",
		"fresh",
		"gone",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("report should contain %q:\n%s", fragment, out)
		}
	}
}

func TestWritePathDiffIdentical(t *testing.T) {
	var buf bytes.Buffer
	writePathDiff(&buf, pathdiff.Diff{}, "a.trc", "b.trc")
	if !strings.Contains(buf.String(), "identical") {
		t.Fatalf("identical paths should say so:\n%s", buf.String())
	}
}

func TestWritePathDiffTruncatesSequence(t *testing.T) {
	var diff pathdiff.Diff
	for i := 0; i < maxPrintedMismatches+10; i++ {
		diff.SequenceDiff = append(diff.SequenceDiff, pathdiff.Mismatch{
			Index: i,
			A:     &pathdiff.Call{Function: "a_side", Depth: 1},
			B:     &pathdiff.Call{Function: "b_side", Depth: 1},
		})
	}

	var buf bytes.Buffer
	writePathDiff(&buf, diff, "a.trc", "b.trc")

	out := buf.String()
	if !strings.Contains(out, "... and 10 more") {
		t.Fatalf("long sequence sections should be truncated:\n%s", out)
	}
	if got := strings.Count(out, "a_side@1 vs b_side@1"); got != maxPrintedMismatches {
		t.Fatalf("got %d printed mismatches, want %d", got, maxPrintedMismatches)
	}
}

func TestAnalyzeTraceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.trc")

	events := []trace.Event{
		{Kind: trace.KindEnter, ThreadID: 1, TimestampNS: 100, Function: "main", File: "main.cpp", Line: 1},
		{Kind: trace.KindExit, ThreadID: 1, TimestampNS: 200, DurationNS: 100, Function: "main", File: "main.cpp", Line: 1},
	}
	var buf bytes.Buffer
	if err := trace.Encode(&buf, 2, events); err != nil {
		t.Fatalf("we should be able to encode the fixture: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("we should be able to write the fixture: %v", err)
	}

	if err := analyzeTraceFile(path, filter.New()); err != nil {
		t.Fatalf("analysis should succeed: %v", err)
	}

	out, err := os.ReadFile(path + ".stats.json")
	if err != nil {
		t.Fatalf("the stats export should exist: %v", err)
	}
	for _, fragment := range []string{`"global"`, `"main"`, `"total_ns": 100`} {
		if !strings.Contains(string(out), fragment) {
			t.Fatalf("export should contain %s:\n%s", fragment, out)
		}
	}
}
