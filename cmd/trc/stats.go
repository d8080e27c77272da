package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/tracescope/tracescope/internal/render"
	"github.com/tracescope/tracescope/internal/stats"
	"github.com/tracescope/tracescope/internal/trace"
)

type statsCmd struct {
	filters filterFlags

	sortBy    string
	perThread bool
	csvPath   string
	jsonPath  string
}

func newStatsCmd() *ffcli.Command {
	var cmd statsCmd
	set := flag.NewFlagSet("stats", flag.ExitOnError)
	cmd.filters.register(set)
	set.StringVar(&cmd.sortBy, "sort-by", "total", "Table order: total, calls, avg or name")
	set.BoolVar(&cmd.perThread, "per-thread", false, "Print per-thread tables even for single-threaded traces")
	set.StringVar(&cmd.csvPath, "export-csv", "", "Write the statistics to this CSV file")
	set.StringVar(&cmd.jsonPath, "export-json", "", "Write the statistics to this JSON file")
	return &ffcli.Command{
		Name:       "stats",
		ShortUsage: "stats [flags] <trace file>",
		ShortHelp:  "Aggregate per-function timing statistics",
		FlagSet:    set,
		Options:    ffOptions,
		Exec:       cmd.exec,
	}
}

func sortOrder(name string) (stats.SortOrder, error) {
	switch order := stats.SortOrder(name); order {
	case stats.SortByTotal, stats.SortByCalls, stats.SortByAvg, stats.SortByName:
		return order, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", name)
	}
}

func (cmd *statsCmd) exec(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one trace file")
	}
	order, err := sortOrder(cmd.sortBy)
	if err != nil {
		return err
	}
	t, err := trace.DecodeFile(args[0])
	if err != nil {
		return err
	}
	f, err := cmd.filters.build()
	if err != nil {
		return err
	}

	global, perThread := stats.Compute(t.Events, f)

	writeStatsTable(os.Stdout, "Global", global, order)
	// A single-threaded trace's thread table would repeat the global one.
	if cmd.perThread || len(perThread) > 1 {
		tids := make([]uint32, 0, len(perThread))
		for tid := range perThread {
			tids = append(tids, tid)
		}
		sort.Slice(tids, func(i, j int) bool { return tids[i] < tids[j] })
		for _, tid := range tids {
			fmt.Fprintln(os.Stdout)
			writeStatsTable(os.Stdout, stats.ThreadScope(tid), perThread[tid], order)
		}
	}

	if cmd.csvPath != "" {
		if err := writeExport(cmd.csvPath, func(w io.Writer) error {
			return stats.WriteCSV(w, global, perThread)
		}); err != nil {
			return err
		}
	}
	if cmd.jsonPath != "" {
		if err := writeExport(cmd.jsonPath, func(w io.Writer) error {
			return stats.WriteJSON(w, global, perThread)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeStatsTable(w io.Writer, scope string, g stats.Global, order stats.SortOrder) {
	fmt.Fprintf(w, "=== %s ===\n", scope)
	fmt.Fprintf(w, "%-40s %8s %12s %12s %12s %12s %10s\n",
		"Function", "Calls", "Total", "Avg", "Min", "Max", "Memory")
	for _, entry := range stats.Sorted(g, order) {
		fmt.Fprintf(w, "%-40s %8d %12s %12s %12s %12s %10s\n",
			entry.Function,
			entry.Calls,
			render.FormatDuration(entry.TotalNS),
			render.FormatDuration(uint64(entry.AvgNS)),
			render.FormatDuration(entry.MinNS),
			render.FormatDuration(entry.MaxNS),
			render.FormatMemory(entry.MemoryDelta),
		)
	}
}

func writeExport(path string, write func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
