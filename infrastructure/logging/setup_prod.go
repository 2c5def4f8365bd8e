//go:build prod

package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup initializes logging for production mode.
// Records go to the console at ConsoleLevel and to a rotating file at
// FileLevel. If the log directory cannot be created, the file handler is
// skipped and logging continues console-only.
// Returns the configured logger, a close function for the log file, and any error.
func Setup(cfg *Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     cfg.ConsoleLevel,
		AddSource: cfg.AddSource,
	})

	dir := cfg.Dir
	if dir == "" {
		dir = DefaultLogDir()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		// Console-only fallback
		logger := slog.New(console)
		setGlobal(logger)
		logger.Warn("Log directory unavailable, file logging disabled", "dir", dir, "error", err)
		return logger, func() error { return nil }, nil
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "stylelens.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}

	file := slog.NewTextHandler(lj, &slog.HandlerOptions{
		Level:     cfg.FileLevel,
		AddSource: cfg.AddSource,
	})

	logger := slog.New(&teeHandler{handlers: []slog.Handler{console, file}})
	setGlobal(logger)

	closeFn := func() error {
		return lj.Close()
	}

	return logger, closeFn, nil
}

// teeHandler fans records out to every handler whose level accepts them.
type teeHandler struct {
	handlers []slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &teeHandler{handlers: next}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &teeHandler{handlers: next}
}
