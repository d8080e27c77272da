package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/tracescope/tracescope/internal/pathdiff"
	"github.com/tracescope/tracescope/internal/trace"
)

// maxPrintedMismatches caps the sequence section of the text report; the
// positional comparison makes one insertion shift every later index, so a
// full listing would just repeat the same divergence.
const maxPrintedMismatches = 50

type diffCmd struct {
	filters filterFlags

	jsonPath string
}

func newDiffCmd() *ffcli.Command {
	var cmd diffCmd
	set := flag.NewFlagSet("diff", flag.ExitOnError)
	cmd.filters.register(set)
	set.StringVar(&cmd.jsonPath, "export-json", "", "Write the diff to this JSON file")
	return &ffcli.Command{
		Name:       "diff",
		ShortUsage: "diff [flags] <trace a> <trace b>",
		ShortHelp:  "Compare the execution paths of two traces",
		FlagSet:    set,
		Options:    ffOptions,
		Exec:       cmd.exec,
	}
}

func (cmd *diffCmd) exec(_ context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("expected two trace files")
	}
	f, err := cmd.filters.build()
	if err != nil {
		return err
	}
	a, err := trace.DecodeFile(args[0])
	if err != nil {
		return err
	}
	b, err := trace.DecodeFile(args[1])
	if err != nil {
		return err
	}

	diff := pathdiff.Compute(
		pathdiff.FromEvents(f.Apply(a.Events)),
		pathdiff.FromEvents(f.Apply(b.Events)),
	)

	writePathDiff(os.Stdout, diff, args[0], args[1])

	if cmd.jsonPath != "" {
		return writeExport(cmd.jsonPath, func(w io.Writer) error {
			return pathdiff.WriteJSON(w, diff, args[0], args[1])
		})
	}
	return nil
}

func writePathDiff(w io.Writer, diff pathdiff.Diff, nameA, nameB string) {
	if diff.Identical() {
		fmt.Fprintln(w, "Execution paths are identical.")
		return
	}

	if len(diff.OnlyInA) > 0 {
		fmt.Fprintf(w, "=== Only in %s (%d) ===\n", nameA, len(diff.OnlyInA))
		for _, function := range diff.OnlyInA {
			fmt.Fprintf(w, "  %s\n", function)
		}
	}
	if len(diff.OnlyInB) > 0 {
		fmt.Fprintf(w, "=== Only in %s (%d) ===\n", nameB, len(diff.OnlyInB))
		for _, function := range diff.OnlyInB {
			fmt.Fprintf(w, "  %s\n", function)
		}
	}
	if len(diff.SequenceDiff) == 0 {
		return
	}

	fmt.Fprintf(w, "=== Sequence differences (%d) ===\n", len(diff.SequenceDiff))
	printed := diff.SequenceDiff
	if len(printed) > maxPrintedMismatches {
		printed = printed[:maxPrintedMismatches]
	}
	for _, m := range printed {
		fmt.Fprintf(w, "  #%d: %s vs %s\n", m.Index, formatCall(m.A), formatCall(m.B))
	}
	if rest := len(diff.SequenceDiff) - len(printed); rest > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", rest)
	}
}

func formatCall(c *pathdiff.Call) string {
	if c == nil {
		return "(ended)"
	}
	return fmt.Sprintf("%s@%d", c.Function, c.Depth)
}
