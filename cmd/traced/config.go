package main

import "github.com/ilyakaznacheev/cleanenv"

type ServiceConfig struct {
	Environment string `env:"TRACESCOPE_ENVIRONMENT" env-default:"development"`
	Port        int    `env:"PORT" env-default:"8080"`

	SentryDSN string `env:"SENTRY_DSN"`

	// TracesBucketURL is a gocloud.dev bucket URL; traces are stored there
	// lz4-compressed, keyed by trace id.
	TracesBucketURL string `env:"TRACES_BUCKET_URL" env-default:"file:///var/lib/tracescope/traces"`

	// MaxTraceBytes caps the size of an uploaded trace before decoding
	// starts; the engine itself imposes no I/O limits.
	MaxTraceBytes int64 `env:"MAX_TRACE_BYTES" env-default:"134217728"`
}

func loadServiceConfig() (ServiceConfig, error) {
	var c ServiceConfig
	err := cleanenv.ReadEnv(&c)
	return c, err
}
