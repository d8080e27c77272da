package main

import (
	"flag"
	"strings"

	"github.com/peterbourgon/ff/v3"

	"github.com/tracescope/tracescope/internal/filter"
)

// ffOptions apply to every subcommand: each flag can also be set via a
// TRC_-prefixed environment variable.
var ffOptions = []ff.Option{ff.WithEnvVarPrefix("TRC")}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// filterFlags is the shared event-filtering flag block. Every analysis
// subcommand registers it so filtering behaves identically across them.
type filterFlags struct {
	functions        stringList
	excludeFunctions stringList
	files            stringList
	excludeFiles     stringList
	threads          stringList
	excludeThreads   stringList
	maxDepth         int
}

func (ft *filterFlags) register(set *flag.FlagSet) {
	set.Var(&ft.functions, "function", "Only include functions matching this pattern (repeatable, * wildcards)")
	set.Var(&ft.excludeFunctions, "exclude-function", "Exclude functions matching this pattern (repeatable, * wildcards)")
	set.Var(&ft.files, "file", "Only include events from files matching this pattern (repeatable, * wildcards)")
	set.Var(&ft.excludeFiles, "exclude-file", "Exclude events from files matching this pattern (repeatable, * wildcards)")
	set.Var(&ft.threads, "thread", "Only include this thread id, decimal or 0x-prefixed hex (repeatable)")
	set.Var(&ft.excludeThreads, "exclude-thread", "Exclude this thread id, decimal or 0x-prefixed hex (repeatable)")
	set.IntVar(&ft.maxDepth, "max-depth", -1, "Drop events nested deeper than this, -1 for unlimited")
}

func (ft *filterFlags) build() (*filter.EventFilter, error) {
	f := filter.New()
	f.IncludeFunctions = ft.functions
	f.ExcludeFunctions = ft.excludeFunctions
	f.IncludeFiles = ft.files
	f.ExcludeFiles = ft.excludeFiles
	f.MaxDepth = ft.maxDepth
	for _, raw := range ft.threads {
		tid, err := filter.ParseThreadID(raw)
		if err != nil {
			return nil, err
		}
		f.IncludeThreads[tid] = struct{}{}
	}
	for _, raw := range ft.excludeThreads {
		tid, err := filter.ParseThreadID(raw)
		if err != nil {
			return nil, err
		}
		f.ExcludeThreads[tid] = struct{}{}
	}
	return f, nil
}
