// Package logger builds the zerolog.Logger instance passed explicitly
// into every component that needs to log, rather than relying on
// zerolog's global logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing to w (os.Stdout when nil) at the
// level named by levelName (one of debug, info, warn, error; defaults
// to info on an unrecognized or empty value).
func New(levelName string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return zerolog.New(w).Level(parseLevel(levelName)).With().Timestamp().Logger()
}

// FromEnv builds a Logger using LOG_LEVEL (§6.5), defaulting to info.
func FromEnv() zerolog.Logger {
	return New(os.Getenv("LOG_LEVEL"), os.Stdout)
}

func parseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "info", "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
