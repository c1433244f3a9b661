package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

type Options struct {
	// Path is the log file. Empty means no file.
	Path string
	// Console also writes to this writer (e.g. os.Stderr). Nil means file only.
	Console io.Writer
	Level   slog.Level
}

// New returns a text logger and a cleanup func closing the log file.
// The interactive UI owns the terminal, so the client logs to a file only.
func New(opts Options) (*slog.Logger, func() error, error) {
	var writers []io.Writer
	cleanup := func() error { return nil }

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		cleanup = f.Close
		writers = append(writers, f)
	}
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}
	if len(writers) == 0 {
		return Discard(), cleanup, nil
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: opts.Level})
	return slog.New(handler), cleanup, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
