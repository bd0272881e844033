// Package logging configures the structured logger shared by the CLI and
// the sync engine.
package logging

import (
	"io"
	"log/slog"
)

// Options controls logger construction.
type Options struct {
	Verbose bool
	JSON    bool
}

// New returns a logger writing to w. Only warnings and errors are logged by
// default; Verbose enables debug output.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler).With("component", "packsync")
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
