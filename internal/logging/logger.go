// Package logging builds the slog logger shared by every fredview component.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const appName = "fredview"

// Options select the handler and destination.
type Options struct {
	Level   slog.Level
	Format  string // "text" (default) or "json"
	File    string // empty logs to Stderr
	Version string
	Stderr  io.Writer
}

// New returns a logger plus a close func for the opened log file. When the
// file cannot be opened the logger falls back to stderr and the open error is
// returned alongside it.
func New(opts Options) (*slog.Logger, func() error, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var (
		out     io.Writer = stderr
		closeFn           = func() error { return nil }
		openErr error
		toFile  bool
	)
	if path := strings.TrimSpace(opts.File); path != "" {
		f, err := openLogFile(path)
		if err != nil {
			openErr = fmt.Errorf("open log file: %w", err)
		} else {
			out, closeFn, toFile = f, f.Close, true
		}
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}

	var logger *slog.Logger
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		h := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.Level})
		logger = slog.New(h).With("app", appName, "version", version)
	default:
		h := tint.NewHandler(out, &tint.Options{
			Level:      opts.Level,
			AddSource:  opts.Level <= slog.LevelDebug,
			TimeFormat: time.Kitchen,
			NoColor:    toFile || !isTerminal(out),
		})
		logger = slog.New(h).With("app", appName)
	}

	if openErr != nil {
		logger.Error("falling back to stderr", "file", opts.File, "error", openErr)
	}
	return logger, closeFn, openErr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discard logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
