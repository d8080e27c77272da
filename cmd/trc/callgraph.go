package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/tracescope/tracescope/internal/callgraph"
	"github.com/tracescope/tracescope/internal/trace"
)

type callGraphCmd struct {
	filters filterFlags

	treeDepth int
	minCalls  uint64
	dotPath   string
}

func newCallGraphCmd() *ffcli.Command {
	var cmd callGraphCmd
	set := flag.NewFlagSet("callgraph", flag.ExitOnError)
	cmd.filters.register(set)
	defaults := callgraph.DefaultTreeOptions()
	set.IntVar(&cmd.treeDepth, "tree-depth", defaults.MaxDepth, "Stop expanding the tree below this depth")
	set.Uint64Var(&cmd.minCalls, "min-calls", defaults.MinCalls, "Hide callees invoked fewer times than this")
	set.StringVar(&cmd.dotPath, "export-dot", "", "Write the graph in Graphviz DOT format to this file")
	return &ffcli.Command{
		Name:       "callgraph",
		ShortUsage: "callgraph [flags] <trace file>",
		ShortHelp:  "Reconstruct and print the caller/callee graph",
		FlagSet:    set,
		Options:    ffOptions,
		Exec:       cmd.exec,
	}
}

func (cmd *callGraphCmd) exec(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one trace file")
	}
	t, err := trace.DecodeFile(args[0])
	if err != nil {
		return err
	}
	f, err := cmd.filters.build()
	if err != nil {
		return err
	}

	g := callgraph.Build(t.Events, f)

	opts := callgraph.TreeOptions{MaxDepth: cmd.treeDepth, MinCalls: cmd.minCalls}
	if err := callgraph.WriteTree(os.Stdout, g, opts); err != nil {
		return err
	}

	if cmd.dotPath != "" {
		return writeExport(cmd.dotPath, func(w io.Writer) error {
			return callgraph.WriteDOT(w, g)
		})
	}
	return nil
}
