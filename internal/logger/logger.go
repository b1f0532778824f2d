package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

func New(environment string) zerolog.Logger {
	// Cloud log collectors pick the level up from "severity".
	zerolog.LevelFieldName = "severity"
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if strings.EqualFold(environment, "development") {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return logger.Level(zerolog.DebugLevel)
	}

	return logger.Level(zerolog.InfoLevel)
}
