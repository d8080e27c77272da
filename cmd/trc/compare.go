package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/tracescope/tracescope/internal/compare"
	"github.com/tracescope/tracescope/internal/stats"
	"github.com/tracescope/tracescope/internal/trace"
)

type compareCmd struct {
	filters filterFlags

	threshold float64
	csvPath   string
	jsonPath  string
}

func newCompareCmd() *ffcli.Command {
	var cmd compareCmd
	set := flag.NewFlagSet("compare", flag.ExitOnError)
	cmd.filters.register(set)
	set.Float64Var(&cmd.threshold, "threshold", 5.0, "Minimum percent change worth reporting")
	set.StringVar(&cmd.csvPath, "export-csv", "", "Write the report to this CSV file")
	set.StringVar(&cmd.jsonPath, "export-json", "", "Write the report to this JSON file")
	return &ffcli.Command{
		Name:       "compare",
		ShortUsage: "compare [flags] <baseline trace> <current trace>",
		ShortHelp:  "Detect performance regressions between two traces",
		FlagSet:    set,
		Options:    ffOptions,
		Exec:       cmd.exec,
	}
}

func (cmd *compareCmd) exec(_ context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("expected a baseline and a current trace file")
	}
	f, err := cmd.filters.build()
	if err != nil {
		return err
	}
	baseline, err := trace.DecodeFile(args[0])
	if err != nil {
		return err
	}
	current, err := trace.DecodeFile(args[1])
	if err != nil {
		return err
	}

	baselineStats, _ := stats.Compute(baseline.Events, f)
	currentStats, _ := stats.Compute(current.Events, f)
	report := compare.Compare(baselineStats, currentStats, cmd.threshold)

	writeCompareReport(os.Stdout, report)

	if cmd.csvPath != "" {
		if err := writeExport(cmd.csvPath, func(w io.Writer) error {
			return compare.WriteCSV(w, report)
		}); err != nil {
			return err
		}
	}
	if cmd.jsonPath != "" {
		if err := writeExport(cmd.jsonPath, func(w io.Writer) error {
			return compare.WriteJSON(w, report)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeCompareReport(w io.Writer, report compare.Report) {
	fmt.Fprintf(w, "=== Regressions (%d) ===\n", len(report.Regressions))
	for _, c := range report.Regressions {
		writeChange(w, c)
	}
	fmt.Fprintf(w, "\n=== Improvements (%d) ===\n", len(report.Improvements))
	for _, c := range report.Improvements {
		writeChange(w, c)
	}
	if len(report.NewFunctions) > 0 {
		fmt.Fprintf(w, "\n=== New functions (%d) ===\n", len(report.NewFunctions))
		for _, function := range report.NewFunctions {
			fmt.Fprintf(w, "  %s\n", function)
		}
	}
	if len(report.RemovedFunctions) > 0 {
		fmt.Fprintf(w, "\n=== Removed functions (%d) ===\n", len(report.RemovedFunctions))
		for _, function := range report.RemovedFunctions {
			fmt.Fprintf(w, "  %s\n", function)
		}
	}
}

func writeChange(w io.Writer, c compare.Change) {
	marker := " "
	if c.IsRegression {
		marker = "!"
	}
	fmt.Fprintf(w, "%s %-40s %-12s %14.1f -> %14.1f (%+.1f%%)\n",
		marker, c.Function, c.Metric, c.Baseline, c.Current, c.PercentChange)
}
