package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/rs/zerolog/log"

	"github.com/tracescope/tracescope/internal/filter"
	"github.com/tracescope/tracescope/internal/stats"
	"github.com/tracescope/tracescope/internal/trace"
)

type batchCmd struct {
	filters filterFlags

	workers int
	ext     string
}

func newBatchCmd() *ffcli.Command {
	var cmd batchCmd
	set := flag.NewFlagSet("batch", flag.ExitOnError)
	cmd.filters.register(set)
	set.IntVar(&cmd.workers, "workers", 8, "Number of concurrent workers")
	set.StringVar(&cmd.ext, "ext", ".trc", "Only process files with this extension")
	return &ffcli.Command{
		Name:       "batch",
		ShortUsage: "batch [flags] <traces directory>",
		ShortHelp:  "Aggregate statistics for every trace in a directory",
		FlagSet:    set,
		Options:    ffOptions,
		Exec:       cmd.exec,
	}
}

// exec walks the directory and fans paths out to workers. Each trace is
// decoded and aggregated independently; the result lands next to the input
// as <trace>.stats.json.
func (cmd *batchCmd) exec(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("expected a traces directory")
	}
	f, err := cmd.filters.build()
	if err != nil {
		return err
	}
	if cmd.workers < 1 {
		return errors.New("workers must be at least 1")
	}

	pathChannel := make(chan string, cmd.workers)
	errChannel := make(chan error)

	go func() {
		for err := range errChannel {
			log.Err(err).Msg("trace analysis failed")
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < cmd.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathChannel {
				if err := analyzeTraceFile(path, f); err != nil {
					errChannel <- err
					continue
				}
				log.Info().Str("path", path).Msg("trace analyzed")
			}
		}()
	}

	err = filepath.WalkDir(args[0], func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, cmd.ext) {
			return nil
		}
		pathChannel <- path
		return nil
	})

	close(pathChannel)
	wg.Wait()
	close(errChannel)
	return err
}

func analyzeTraceFile(path string, f *filter.EventFilter) error {
	t, err := trace.DecodeFile(path)
	if err != nil {
		return err
	}
	global, perThread := stats.Compute(t.Events, f)
	return writeExport(path+".stats.json", func(w io.Writer) error {
		return stats.WriteJSON(w, global, perThread)
	})
}
