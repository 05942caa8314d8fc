// Package logging wraps charmbracelet/log behind a small structured-logging
// interface so the rest of the service never imports the backend directly.
package logging

import (
	"context"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the structured logger used across the service. Keyvals are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

// Config controls logger construction.
type Config struct {
	Level     string // debug, info, warn, error
	JSON      bool
	AddSource bool
	Output    io.Writer
}

// DefaultConfig returns the settings used when none are supplied.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Output: os.Stderr,
	}
}

type logger struct {
	charm *charmlog.Logger
}

// NewLogger builds a Logger from cfg. A nil cfg gets defaults.
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	cl := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		ReportCaller:    cfg.AddSource,
		Level:           parseLevel(cfg.Level),
	})
	if cfg.JSON {
		cl.SetFormatter(charmlog.JSONFormatter)
	}
	return &logger{charm: cl}
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() Logger {
	return &logger{charm: charmlog.NewWithOptions(io.Discard, charmlog.Options{
		Level: charmlog.FatalLevel,
	})}
}

func parseLevel(s string) charmlog.Level {
	switch s {
	case "debug":
		return charmlog.DebugLevel
	case "warn":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

func (l *logger) Debug(msg string, keyvals ...any) { l.charm.Debug(msg, keyvals...) }
func (l *logger) Info(msg string, keyvals ...any)  { l.charm.Info(msg, keyvals...) }
func (l *logger) Warn(msg string, keyvals ...any)  { l.charm.Warn(msg, keyvals...) }
func (l *logger) Error(msg string, keyvals ...any) { l.charm.Error(msg, keyvals...) }

func (l *logger) With(keyvals ...any) Logger {
	return &logger{charm: l.charm.With(keyvals...)}
}

type contextKey struct{}

// WithContext stores a logger on the context for request-scoped logging.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored on the context, or a default one.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(contextKey{}).(Logger); ok {
		return l
	}
	return NewLogger(nil)
}
