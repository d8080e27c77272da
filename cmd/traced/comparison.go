package main

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"

	"github.com/tracescope/tracescope/internal/compare"
	"github.com/tracescope/tracescope/internal/httputil"
	"github.com/tracescope/tracescope/internal/pathdiff"
	"github.com/tracescope/tracescope/internal/stats"
	"github.com/tracescope/tracescope/internal/storageutil"
)

const defaultThresholdPct = 5.0

func (e *environment) getCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	params, logger, ok := httputil.GetRequiredQueryParameters(w, r, "baseline", "current")
	if !ok {
		return
	}

	threshold := defaultThresholdPct
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		var err error
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	baseline, err := e.loadTrace(ctx, params["baseline"])
	if err != nil {
		if errors.Is(err, storageutil.ErrObjectNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if hub != nil {
			hub.CaptureException(err)
		}
		logger.Err(err).Msg("error loading baseline trace")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	current, err := e.loadTrace(ctx, params["current"])
	if err != nil {
		if errors.Is(err, storageutil.ErrObjectNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if hub != nil {
			hub.CaptureException(err)
		}
		logger.Err(err).Msg("error loading current trace")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s := sentry.StartSpan(ctx, "compare.run")
	s.Description = "Compare function statistics"
	baselineStats, _ := stats.Compute(baseline.Events, f)
	currentStats, _ := stats.Compute(current.Events, f)
	report := compare.Compare(baselineStats, currentStats, threshold)
	s.Finish()

	var buf bytes.Buffer
	switch r.URL.Query().Get("format") {
	case "csv":
		err = compare.WriteCSV(&buf, report)
		w.Header().Set("Content-Type", "text/csv")
	default:
		err = compare.WriteJSON(&buf, report)
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

func (e *environment) getDiff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	params, logger, ok := httputil.GetRequiredQueryParameters(w, r, "a", "b")
	if !ok {
		return
	}

	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, err := e.loadTrace(ctx, params["a"])
	if err != nil {
		if errors.Is(err, storageutil.ErrObjectNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if hub != nil {
			hub.CaptureException(err)
		}
		logger.Err(err).Msg("error loading trace a")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	b, err := e.loadTrace(ctx, params["b"])
	if err != nil {
		if errors.Is(err, storageutil.ErrObjectNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if hub != nil {
			hub.CaptureException(err)
		}
		logger.Err(err).Msg("error loading trace b")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s := sentry.StartSpan(ctx, "pathdiff.compute")
	s.Description = "Diff execution paths"
	diff := pathdiff.Compute(
		pathdiff.FromEvents(f.Apply(a.Events)),
		pathdiff.FromEvents(f.Apply(b.Events)),
	)
	s.Finish()

	var buf bytes.Buffer
	if err := pathdiff.WriteJSON(&buf, diff, params["a"], params["b"]); err != nil {
		if hub != nil {
			hub.CaptureException(err)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
