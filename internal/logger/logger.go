// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a timestamped logger writing to w. pretty switches to the
// human-readable console format. Unknown levels fall back to info.
func New(w io.Writer, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Setup replaces the global logger and makes it the fallback for contexts
// that carry no request logger.
func Setup(level string, pretty bool) {
	l := New(os.Stderr, level, pretty)
	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
}
