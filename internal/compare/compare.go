// Package compare detects performance regressions between two independently
// aggregated statistics sets.
package compare

import (
	"math"
	"sort"

	"github.com/tracescope/tracescope/internal/stats"
)

// Metric names one of the compared statistics.
type Metric string

const (
	MetricAvgNS       Metric = "avg_ns"
	MetricTotalNS     Metric = "total_ns"
	MetricCalls       Metric = "calls"
	MetricMemoryDelta Metric = "memory_delta"
)

type (
	// Change is one (function, metric) comparison that cleared the
	// threshold.
	Change struct {
		Function      string  `json:"function"`
		Metric        Metric  `json:"metric"`
		Baseline      float64 `json:"baseline"`
		Current       float64 `json:"current"`
		Delta         float64 `json:"delta"`
		PercentChange float64 `json:"percent_change"`

		// IsRegression is false for call-count changes even when they land
		// in the regressions bucket: a different call count is a structural
		// observation, not a quality judgment.
		IsRegression bool `json:"is_regression"`
	}

	// Report groups the outcome of one comparison run. Changes are ordered
	// by descending absolute percent change within each bucket.
	Report struct {
		Regressions      []Change `json:"regressions"`
		Improvements     []Change `json:"improvements"`
		NewFunctions     []string `json:"new_functions"`
		RemovedFunctions []string `json:"removed_functions"`
	}
)

func newChange(function string, metric Metric, baseline, current float64) Change {
	return Change{
		Function:      function,
		Metric:        metric,
		Baseline:      baseline,
		Current:       current,
		Delta:         current - baseline,
		PercentChange: (current - baseline) / baseline * 100,
		IsRegression:  metric != MetricCalls && current > baseline,
	}
}

// Compare walks the union of function names in both stats sets. Functions
// present on only one side are reported as new or removed; for the rest,
// the four metrics are compared independently. A metric with a zero baseline
// is skipped entirely, never divided by.
func Compare(baseline, current stats.Global, thresholdPct float64) Report {
	var report Report

	seen := make(map[string]struct{}, len(baseline)+len(current))
	for function := range baseline {
		seen[function] = struct{}{}
	}
	for function := range current {
		seen[function] = struct{}{}
	}

	for function := range seen {
		b, inBaseline := baseline[function]
		c, inCurrent := current[function]
		switch {
		case !inBaseline:
			report.NewFunctions = append(report.NewFunctions, function)
			continue
		case !inCurrent:
			report.RemovedFunctions = append(report.RemovedFunctions, function)
			continue
		}

		metrics := []struct {
			metric   Metric
			baseline float64
			current  float64
		}{
			{MetricAvgNS, b.AvgNS, c.AvgNS},
			{MetricTotalNS, float64(b.TotalNS), float64(c.TotalNS)},
			{MetricCalls, float64(b.Calls), float64(c.Calls)},
			{MetricMemoryDelta, float64(b.MemoryDelta), float64(c.MemoryDelta)},
		}
		for _, m := range metrics {
			if m.baseline <= 0 {
				continue
			}
			change := newChange(function, m.metric, m.baseline, m.current)
			if math.Abs(change.PercentChange) < thresholdPct {
				continue
			}
			// Call-count changes always go into the regressions bucket,
			// flagged informational via IsRegression=false.
			if m.metric == MetricCalls || change.IsRegression {
				report.Regressions = append(report.Regressions, change)
			} else {
				report.Improvements = append(report.Improvements, change)
			}
		}
	}

	sortChanges(report.Regressions)
	sortChanges(report.Improvements)
	sort.Strings(report.NewFunctions)
	sort.Strings(report.RemovedFunctions)
	return report
}

func sortChanges(changes []Change) {
	sort.Slice(changes, func(i, j int) bool {
		a, b := changes[i], changes[j]
		pa, pb := math.Abs(a.PercentChange), math.Abs(b.PercentChange)
		if pa != pb {
			return pa > pb
		}
		if a.Function != b.Function {
			return a.Function < b.Function
		}
		return a.Metric < b.Metric
	})
}
