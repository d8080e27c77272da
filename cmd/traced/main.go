package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"

	"github.com/tracescope/tracescope/internal/httputil"
	"github.com/tracescope/tracescope/internal/logutil"
	"github.com/tracescope/tracescope/internal/storageutil"
)

type environment struct {
	config ServiceConfig

	bucket *blob.Bucket
	traces *storageutil.Blob
}

var release string

func newEnvironment(ctx context.Context) (*environment, error) {
	var e environment
	var err error
	e.config, err = loadServiceConfig()
	if err != nil {
		return nil, err
	}
	e.bucket, err = blob.OpenBucket(ctx, e.config.TracesBucketURL)
	if err != nil {
		return nil, err
	}
	e.traces = &storageutil.Blob{Bucket: e.bucket}
	return &e, nil
}

func (e *environment) shutdown() {
	if err := e.bucket.Close(); err != nil {
		sentry.CaptureException(err)
	}
	sentry.Flush(5 * time.Second)
}

func (e *environment) newRouter() (*httprouter.Router, error) {
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, err
	}

	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodPost, "/traces", e.postTrace},
		{http.MethodGet, "/traces/:trace_id/stats", e.getTraceStats},
		{http.MethodGet, "/traces/:trace_id/callgraph", e.getTraceCallGraph},
		{http.MethodGet, "/compare", e.getCompare},
		{http.MethodGet, "/diff", e.getDiff},
		{http.MethodGet, "/health", e.getHealth},
	}

	router := httprouter.New()

	for _, route := range routes {
		handlerFunc := httputil.DecompressPayload(route.handler)
		handler := compress(handlerFunc)

		router.Handler(route.method, route.path, handler)
	}

	return router, nil
}

func main() {
	logutil.ConfigureLogger()

	ctx := context.Background()
	env, err := newEnvironment(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("error setting up environment")
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              env.config.SentryDSN,
		EnableTracing:    true,
		Environment:      env.config.Environment,
		Release:          release,
		TracesSampleRate: 1.0,
		BeforeSend:       httputil.SetHTTPStatusCodeTag,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("can't initialize sentry")
	}

	router, err := env.newRouter()
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal().Err(err).Msg("error setting up the router")
	}

	server := http.Server{
		Addr:    ":" + strconv.Itoa(env.config.Port),
		Handler: sentryhttp.New(sentryhttp.Options{}).Handle(router),
	}

	waitForShutdown := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		cctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(cctx); err != nil {
			sentry.CaptureException(err)
			log.Err(err).Msg("error shutting down server")
		}

		close(waitForShutdown)
	}()

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		sentry.CaptureException(err)
		log.Err(err).Msg("server failed")
	}

	<-waitForShutdown

	// Shutdown the rest of the environment after the HTTP connections are closed
	env.shutdown()
}

func (e *environment) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
