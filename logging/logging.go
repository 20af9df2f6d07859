// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at a console writer on f and sets the
// global level. An unknown level leaves the level unchanged.
func Setup(level string, f *os.File) zerolog.Logger {
	SetLevel(level)
	log.Logger = zerolog.New(ConsoleWriter(f)).With().Timestamp().Logger()
	return log.Logger
}

// SetLevel sets the global level from debug, info, warn or error.
func SetLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
	}
}

// IsTerminal returns true if the given file is a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConsoleWriter returns a human-readable zerolog writer for f, coloured only
// when f is a terminal.
func ConsoleWriter(f *os.File) io.Writer {
	noColor := !IsTerminal(f)
	return zerolog.ConsoleWriter{
		Out:        f,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
		FormatLevel: func(i any) string {
			if s, ok := i.(string); ok {
				return fmt.Sprintf("%-5s", levelLabel(s))
			}
			return ""
		},
	}
}

func levelLabel(level string) string {
	switch level {
	case "debug":
		return "DEBUG"
	case "info":
		return "INFO"
	case "warn":
		return "WARN"
	case "error":
		return "ERROR"
	case "fatal":
		return "FATAL"
	}
	return level
}

// Discard returns a logger that drops everything, for tests and library
// callers that do not want output.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}
