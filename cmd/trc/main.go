// trc is the command line frontend of the trace analysis engine: it decodes
// binary trace files and displays, aggregates, compares, and diffs them.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/rs/zerolog/log"

	"github.com/tracescope/tracescope/internal/logutil"
)

func main() {
	logutil.ConfigureLogger()

	root := ffcli.Command{
		Name:       "trc",
		ShortUsage: "trc <subcommand> [flags] <args>",
		ShortHelp:  "Analyze binary execution traces",
		Subcommands: []*ffcli.Command{
			newDisplayCmd(),
			newStatsCmd(),
			newCallGraphCmd(),
			newCompareCmd(),
			newDiffCmd(),
			newBatchCmd(),
		},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}

	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			log.Fatal().Err(err).Msg("command failed")
		}
	}
}
