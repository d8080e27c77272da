package compare

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tracescope/tracescope/internal/stats"
	"github.com/tracescope/tracescope/internal/testutil"
)

func statWith(calls, totalNS uint64, avgNS float64, memory uint64) *stats.FunctionStat {
	return &stats.FunctionStat{
		Calls:       calls,
		TotalNS:     totalNS,
		AvgNS:       avgNS,
		MemoryDelta: memory,
	}
}

func TestCompareNewAndRemovedFunctions(t *testing.T) {
	baseline := stats.Global{
		"a": statWith(1, 100, 100, 0),
		"b": statWith(1, 100, 100, 0),
	}
	current := stats.Global{
		"a": statWith(1, 100, 100, 0),
		"c": statWith(1, 100, 100, 0),
	}
	report := Compare(baseline, current, 5.0)

	if diff := testutil.Diff([]string{"c"}, report.NewFunctions); diff != "" {
		t.Fatalf("new functions mismatch: %s", diff)
	}
	if diff := testutil.Diff([]string{"b"}, report.RemovedFunctions); diff != "" {
		t.Fatalf("removed functions mismatch: %s", diff)
	}
	if len(report.Regressions) != 0 || len(report.Improvements) != 0 {
		t.Fatalf("identical stats must not report changes: %+v", report)
	}
}

func TestCompareThresholdBoundary(t *testing.T) {
	baseline := stats.Global{"f": statWith(1, 1000, 1000, 0)}
	current := stats.Global{"f": statWith(1, 1030, 1030, 0)} // +3%

	if report := Compare(baseline, current, 5.0); len(report.Regressions) != 0 {
		t.Fatalf("3%% change must not clear a 5%% threshold: %+v", report.Regressions)
	}
	report := Compare(baseline, current, 2.0)
	if len(report.Regressions) != 2 { // avg_ns and total_ns both moved 3%
		t.Fatalf("3%% change must clear a 2%% threshold: %+v", report.Regressions)
	}
	for _, c := range report.Regressions {
		if !c.IsRegression {
			t.Fatalf("duration growth must be flagged as regression: %+v", c)
		}
	}
}

func TestCompareClassification(t *testing.T) {
	baseline := stats.Global{
		"slower": statWith(1, 1000, 1000, 0),
		"faster": statWith(1, 1000, 1000, 0),
	}
	current := stats.Global{
		"slower": statWith(1, 2000, 2000, 0), // 2x slower
		"faster": statWith(1, 500, 500, 0),   // 2x faster
	}
	report := Compare(baseline, current, 5.0)

	for _, c := range report.Regressions {
		if c.Function != "slower" {
			t.Fatalf("unexpected regression: %+v", c)
		}
		if !c.IsRegression || c.PercentChange != 100 {
			t.Fatalf("2x increase should be a +100%% regression: %+v", c)
		}
	}
	for _, c := range report.Improvements {
		if c.Function != "faster" {
			t.Fatalf("unexpected improvement: %+v", c)
		}
		if c.IsRegression || c.PercentChange != -50 {
			t.Fatalf("2x decrease should be a -50%% improvement: %+v", c)
		}
	}
}

func TestCompareCallCountInformational(t *testing.T) {
	baseline := stats.Global{"f": statWith(10, 1000, 100, 0)}
	current := stats.Global{"f": statWith(5, 500, 100, 0)}
	report := Compare(baseline, current, 5.0)

	var sawCalls bool
	for _, c := range report.Regressions {
		if c.Metric == MetricCalls {
			sawCalls = true
			if c.IsRegression {
				t.Fatalf("call-count change must stay informational: %+v", c)
			}
		}
	}
	if !sawCalls {
		t.Fatal("call-count drop must be reported in the regressions bucket")
	}
	for _, c := range report.Improvements {
		if c.Metric == MetricCalls {
			t.Fatalf("call-count change must never be an improvement: %+v", c)
		}
	}
}

func TestCompareZeroBaselineSkipped(t *testing.T) {
	baseline := stats.Global{"f": statWith(1, 100, 100, 0)}
	current := stats.Global{"f": statWith(1, 200, 200, 4096)}
	report := Compare(baseline, current, 5.0)

	for _, c := range append(report.Regressions, report.Improvements...) {
		if c.Metric == MetricMemoryDelta {
			t.Fatalf("zero-baseline memory comparison must be skipped: %+v", c)
		}
	}
}

func TestCompareOrdering(t *testing.T) {
	baseline := stats.Global{
		"small": statWith(1, 1000, 1000, 0),
		"big":   statWith(1, 1000, 1000, 0),
	}
	current := stats.Global{
		"small": statWith(1, 1100, 1100, 0), // +10%
		"big":   statWith(1, 3000, 3000, 0), // +200%
	}
	report := Compare(baseline, current, 5.0)

	if len(report.Regressions) < 2 || report.Regressions[0].Function != "big" {
		t.Fatalf("largest percent change must come first: %+v", report.Regressions)
	}
}

func TestWriteCSV(t *testing.T) {
	baseline := stats.Global{
		"f":       statWith(1, 1000, 1000, 0),
		"removed": statWith(1, 1, 1, 0),
	}
	current := stats.Global{
		"f":   statWith(1, 2000, 2000, 0),
		"new": statWith(1, 1, 1, 0),
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, Compare(baseline, current, 5.0)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, fragment := range []string{
		"Type,Function,Metric,Baseline,Current,Delta,Percent_Change",
		"REGRESSION,f,avg_ns,1000,2000,1000,100.00",
		"NEW,new,,,,,",
		"REMOVED,removed,,,,,",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("csv missing %q:\n%s", fragment, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	baseline := stats.Global{"f": statWith(1, 1000, 1000, 0)}
	current := stats.Global{"f": statWith(1, 2000, 2000, 0)}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Compare(baseline, current, 5.0)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, fragment := range []string{`"regressions"`, `"percent_change": 100`, `"metric": "avg_ns"`} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("json missing %s:\n%s", fragment, out)
		}
	}
}
