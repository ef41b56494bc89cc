// Package logging configures the process logger and carries it through
// contexts.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mattn/go-isatty"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects the handler.
type Config struct {
	Level  string
	Format string
	Output io.Writer
	// Color forces ANSI colours on or off; nil detects a terminal.
	Color *bool
}

var (
	mu            sync.RWMutex
	defaultLogger = slog.New(slog.DiscardHandler)
)

// Default returns the process logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process logger.
func SetDefault(logger *slog.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

type ctxKey struct{}

// With stores logger in ctx.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger stored in ctx, or Default.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, goerr.New("unknown log level", goerr.V("level", raw))
}

// New builds a logger from cfg.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", FormatConsole:
		color := isTerminal(out)
		if cfg.Color != nil {
			color = *cfg.Color
		}
		handler := clog.New(
			clog.WithWriter(out),
			clog.WithLevel(level),
			clog.WithColor(color),
		)
		return slog.New(handler), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), nil
	}
	return nil, goerr.New("unknown log format", goerr.V("format", cfg.Format))
}

// Error logs err with the values and stack of every goerr layer.
func Error(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}
	logger := From(ctx)
	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.ErrorContext(ctx, msg,
			slog.String("error", err.Error()),
			slog.Any("values", ge.Values()),
			slog.Any("stack", ge.Stacks()),
		)
		return
	}
	logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
