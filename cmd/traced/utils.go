package main

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/goccy/go-json"

	"github.com/tracescope/tracescope/internal/callgraph"
	"github.com/tracescope/tracescope/internal/filter"
	"github.com/tracescope/tracescope/internal/storageutil"
	"github.com/tracescope/tracescope/internal/trace"
)

func (e *environment) loadTrace(ctx context.Context, traceID string) (*trace.Trace, error) {
	s := sentry.StartSpan(ctx, "storage.read")
	s.Description = "Read trace from storage"
	data, err := storageutil.CompressedRead(ctx, e.traces, traceID)
	s.Finish()
	if err != nil {
		return nil, err
	}

	s = sentry.StartSpan(ctx, "trace.decode")
	s.Description = "Decode trace"
	defer s.Finish()
	return trace.Decode(bytes.NewReader(data))
}

// filterFromQuery builds an event filter from the shared query parameters
// every analysis endpoint accepts.
func filterFromQuery(q url.Values) (*filter.EventFilter, error) {
	f := filter.New()
	f.IncludeFunctions = q["function"]
	f.ExcludeFunctions = q["exclude_function"]
	f.IncludeFiles = q["file"]
	f.ExcludeFiles = q["exclude_file"]
	for _, raw := range q["thread"] {
		tid, err := filter.ParseThreadID(raw)
		if err != nil {
			return nil, err
		}
		f.IncludeThreads[tid] = struct{}{}
	}
	for _, raw := range q["exclude_thread"] {
		tid, err := filter.ParseThreadID(raw)
		if err != nil {
			return nil, err
		}
		f.ExcludeThreads[tid] = struct{}{}
	}
	if raw := q.Get("max_depth"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		f.MaxDepth = depth
	}
	return f, nil
}

func treeOptionsFromQuery(q url.Values) (callgraph.TreeOptions, error) {
	opts := callgraph.DefaultTreeOptions()
	if raw := q.Get("tree_depth"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			return opts, err
		}
		opts.MaxDepth = depth
	}
	if raw := q.Get("min_calls"); raw != "" {
		minCalls, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return opts, err
		}
		opts.MinCalls = minCalls
	}
	return opts, nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	b, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
