// Package logger provides leveled structured logging backed by zerolog.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var defaultLogger zerolog.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init initializes the default logger with the specified level and format.
// Format "console" selects human-readable output; anything else emits JSON.
func Init(level string, format string) {
	var l zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = zerolog.DebugLevel
	case "info":
		l = zerolog.InfoLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	default:
		l = zerolog.InfoLevel
	}

	var out = zerolog.New(os.Stderr)
	if strings.ToLower(format) == "console" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	defaultLogger = out.Level(l).With().Timestamp().Logger()
}

func Debug(format string, args ...interface{}) {
	defaultLogger.Debug().Msg(fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	defaultLogger.Info().Msg(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	defaultLogger.Warn().Msg(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	defaultLogger.Error().Msg(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	defaultLogger.Fatal().Msg(fmt.Sprintf(format, args...))
}
