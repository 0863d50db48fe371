package main

import (
	"io"
	"log/slog"
)

// NewLogger returns the process logger writing to w. Debug records are
// enabled by verbose; json switches from text to JSON output.
func NewLogger(w io.Writer, verbose, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
