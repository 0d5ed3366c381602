package logger

import (
	"io"
	"os"
	"time"

	"resort/config"
	"resort/shared/constant"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init installs the global zerolog logger. Development gets a console writer, every other
// environment writes JSON lines tagged with the app name and environment.
func Init(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(Level(cfg.Server.LogLevel))

	log.Logger = New(cfg, os.Stdout)
}

func New(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.Server.Env == constant.ServerEnvDevelopment {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).With().
		Timestamp().
		Str("app", cfg.App.Name).
		Str("env", cfg.Server.Env).
		Logger()
}

// Level parses LOG_LEVEL, defaulting to info.
func Level(value string) zerolog.Level {
	level, err := zerolog.ParseLevel(value)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return level
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}
