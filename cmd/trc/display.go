package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/tracescope/tracescope/internal/render"
	"github.com/tracescope/tracescope/internal/trace"
)

type displayCmd struct {
	filters filterFlags

	color      bool
	noTiming   bool
	timestamps bool
}

func newDisplayCmd() *ffcli.Command {
	var cmd displayCmd
	set := flag.NewFlagSet("display", flag.ExitOnError)
	cmd.filters.register(set)
	set.BoolVar(&cmd.color, "color", false, "Colorize lines by call depth")
	set.BoolVar(&cmd.noTiming, "no-timing", false, "Hide durations on function exits")
	set.BoolVar(&cmd.timestamps, "timestamps", false, "Prefix every line with the raw timestamp")
	return &ffcli.Command{
		Name:       "display",
		ShortUsage: "display [flags] <trace file>",
		ShortHelp:  "Pretty-print the event timeline of a trace",
		FlagSet:    set,
		Options:    ffOptions,
		Exec:       cmd.exec,
	}
}

func (cmd *displayCmd) exec(_ context.Context, args []string) error {
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

	opts := render.EventOptions{
		ShowTiming:    !cmd.noTiming,
		ShowTimestamp: cmd.timestamps,
	}
	if cmd.color {
		opts.Palette = render.DefaultPalette()
	}

	w := bufio.NewWriter(os.Stdout)
	for _, e := range f.Apply(t.Events) {
		if err := render.WriteEvent(w, e, opts); err != nil {
			return err
		}
	}
	return w.Flush()
}
