// Package logging builds the structured logger Weaver's CLI driver uses for
// its own diagnostics (never for program-level "puts"/print output, which
// goes straight to the configured stdio). No example in the retrieved
// corpus pulls in a third-party structured-logging library, so this one
// ambient concern is built directly on the standard library's log/slog
// rather than adapted from a pack dependency (see DESIGN.md).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config mirrors the CLI flags spec.md §6 names: --log-level, --log-console,
// --log-file, --log-format.
type Config struct {
	Level   string // "debug", "info", "warn", "error"
	Console bool
	File    string
	Format  string // "text" or "json"
}

// New builds a *slog.Logger per cfg. If Console is true and File is set,
// output is duplicated to both via io.MultiWriter; if neither is set,
// stderr is used, matching nenuphar's practice of writing diagnostics to
// mainer.Stdio.Stderr.
func New(cfg Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	var writers []io.Writer
	closer := func() error { return nil }

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, f)
		closer = f.Close
	}
	if cfg.Console || len(writers) == 0 {
		if stderr == nil {
			stderr = os.Stderr
		}
		writers = append(writers, stderr)
	}

	var w io.Writer = writers[0]
	if len(writers) > 1 {
		w = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closer, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
