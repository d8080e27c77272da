package logutil

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogger sets up the global zerolog logger. Plain JSON lines with a
// severity field when running as a service (TRACESCOPE_JSON_LOGS set),
// human-readable console output otherwise. TRACESCOPE_LOG_LEVEL drops
// everything below the given level.
func ConfigureLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Caller().Stack().Logger()
	if os.Getenv("TRACESCOPE_JSON_LOGS") != "" {
		log.Logger = log.Hook(SeverityHook{})
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if raw := os.Getenv("TRACESCOPE_LOG_LEVEL"); raw != "" {
		if level, err := zerolog.ParseLevel(raw); err == nil {
			log.Logger = log.Sample(LevelSampler{Level: level})
		}
	}
}

type SeverityHook struct{}

func (h SeverityHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	e.Str("severity", level.String())
}
