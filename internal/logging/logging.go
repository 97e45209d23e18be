// Package logging provides the structured logger shared by every
// ssh-clipboard command. Selection between human-readable and
// machine-parseable output is automatic, based on whether the
// destination is a terminal.
//
// No component in this module ever logs clipboard content bytes; see
// internal/fingerprint for the diagnostic-safe alternative.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// New returns a logger writing to dest at the given level. When dest
// is a terminal, output is slog's text handler; otherwise (piped,
// redirected, or captured by a parent SSH process) output is JSON.
func New(dest *os.File, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(dest.Fd())) {
		handler = slog.NewTextHandler(dest, options)
	} else {
		handler = slog.NewJSONHandler(dest, options)
	}
	return slog.New(handler)
}

// NewJSON returns a logger that always emits JSON regardless of
// whether dest is a terminal. The proxy uses this unconditionally:
// its stderr is consumed by the SSH client process, not read directly
// by a human.
func NewJSON(dest io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(dest, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything, for tests that do
// not care about log output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
