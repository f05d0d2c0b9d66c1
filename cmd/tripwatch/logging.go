package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nixlim/tripwatch/internal/config"
)

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level: %s", s)
}

// newLogger builds the process logger. Output goes to cfg.File when set,
// otherwise to fallback. The returned closer releases the log file.
func newLogger(cfg config.LoggingConfig, fallback io.Writer) (*slog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	out := fallback
	closer := func() error { return nil }
	if cfg.File != "" {
		path := config.ExpandTilde(cfg.File)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %q: %w", path, err)
		}
		out = f
		closer = f.Close
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	case "text", "":
		handler = slog.NewTextHandler(out, opts)
	default:
		_ = closer()
		return nil, nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	return slog.New(handler), closer, nil
}
