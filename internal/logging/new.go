package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Backend names accepted by Options.Backend.
const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"
)

// Options controls how New builds a Logger.
type Options struct {
	// Backend is "slog" (default) or "zerolog".
	Backend string
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// JSON switches the slog backend to JSON output and disables the
	// zerolog console writer.
	JSON bool
	// Output defaults to os.Stderr so log lines do not interleave with the
	// interactive prompt on stdout.
	Output io.Writer
}

// New constructs a Logger for the given options.
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	if strings.EqualFold(opts.Backend, BackendZerolog) {
		var w io.Writer = out
		if !opts.JSON {
			w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}
		zl := zerolog.New(w).Level(zerologLevel(opts.Level)).With().Timestamp().Logger()
		return NewZerologLogger(zl)
	}

	ho := &slog.HandlerOptions{Level: slogLevel(opts.Level)}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(out, ho)
	} else {
		h = slog.NewTextHandler(out, ho)
	}
	return NewSlogLogger(slog.New(h))
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func slogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func zerologLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
