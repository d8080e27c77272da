package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/tracescope/tracescope/internal/callgraph"
	"github.com/tracescope/tracescope/internal/stats"
	"github.com/tracescope/tracescope/internal/storageutil"
	"github.com/tracescope/tracescope/internal/trace"
)

type postTraceResponse struct {
	TraceID       string `json:"trace_id"`
	FormatVersion uint32 `json:"format_version"`
	Events        int    `json:"events"`
}

// isFormatError reports whether err came from the trace decoder rejecting
// the payload, as opposed to an internal failure.
func isFormatError(err error) bool {
	return errors.Is(err, trace.ErrBadMagic) ||
		errors.Is(err, trace.ErrUnsupportedVersion) ||
		errors.Is(err, trace.ErrTruncatedHeader) ||
		errors.Is(err, trace.ErrTruncatedEvent)
}

func (e *environment) postTrace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	s := sentry.StartSpan(ctx, "request.body")
	s.Description = "Read request body"
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, e.config.MaxTraceBytes))
	s.Finish()
	if err != nil {
		if hub != nil {
			hub.CaptureException(err)
		}
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s = sentry.StartSpan(ctx, "trace.decode")
	s.Description = "Decode trace"
	t, err := trace.Decode(bytes.NewReader(body))
	s.Finish()
	if err != nil {
		if isFormatError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if hub != nil {
			hub.CaptureException(err)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	traceID := uuid.New().String()

	s = sentry.StartSpan(ctx, "storage.write")
	s.Description = "Write trace to storage"
	err = storageutil.CompressedWrite(ctx, e.traces, traceID, body)
	s.Finish()
	if err != nil {
		if hub != nil {
			hub.CaptureException(err)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, postTraceResponse{
		TraceID:       traceID,
		FormatVersion: t.FormatVersion,
		Events:        len(t.Events),
	})
}

func (e *environment) getTraceStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)
	ps := httprouter.ParamsFromContext(ctx)
	traceID := ps.ByName("trace_id")

	t, err := e.loadTrace(ctx, traceID)
	if err != nil {
		if errors.Is(err, storageutil.ErrObjectNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if hub != nil {
			hub.CaptureException(err)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s := sentry.StartSpan(ctx, "stats.compute")
	s.Description = "Aggregate function statistics"
	global, perThread := stats.Compute(t.Events, f)
	s.Finish()

	var buf bytes.Buffer
	switch r.URL.Query().Get("format") {
	case "csv":
		err = stats.WriteCSV(&buf, global, perThread)
		w.Header().Set("Content-Type", "text/csv")
	default:
		err = stats.WriteJSON(&buf, global, perThread)
		w.Header().Set("Content-Type", "application/json")
	}
	if err != nil {
		if hub != nil {
			hub.CaptureException(err)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (e *environment) getTraceCallGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)
	ps := httprouter.ParamsFromContext(ctx)
	traceID := ps.ByName("trace_id")

	t, err := e.loadTrace(ctx, traceID)
	if err != nil {
		if errors.Is(err, storageutil.ErrObjectNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if hub != nil {
			hub.CaptureException(err)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s := sentry.StartSpan(ctx, "callgraph.build")
	s.Description = "Reconstruct call graph"
	g := callgraph.Build(t.Events, f)
	s.Finish()

	switch r.URL.Query().Get("format") {
	case "dot":
		var buf bytes.Buffer
		if err := callgraph.WriteDOT(&buf, g); err != nil {
			if hub != nil {
				hub.CaptureException(err)
			}
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	case "tree":
		opts, err := treeOptionsFromQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var buf bytes.Buffer
		if err := callgraph.WriteTree(&buf, g, opts); err != nil {
			if hub != nil {
				hub.CaptureException(err)
			}
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	default:
		respondJSON(w, http.StatusOK, g)
	}
}
