// Package logger provides structured logging for the extraction pipeline.
// All output goes to the configured writer (stderr by default) so stdout
// stays clean for transports that own it.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Level represents the minimum level a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name such as "debug" or "WARN".
// Unknown names fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// toSlogLevel converts a Level to its slog equivalent.
func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger backed by the given slog handler.
func New(handler slog.Handler) Logger {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &slogLogger{
		logger: slog.New(handler),
	}
}

// NewWithLevel creates a JSON logger on stderr with the given minimum level.
func NewWithLevel(level Level) Logger {
	opts := &slog.HandlerOptions{
		Level: level.toSlogLevel(),
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return &slogLogger{
		logger: slog.New(handler),
	}
}

// NewText creates a logger with human-readable text output.
func NewText(writer io.Writer, level Level) Logger {
	opts := &slog.HandlerOptions{
		Level: level.toSlogLevel(),
	}
	if writer == nil {
		writer = os.Stderr
	}
	handler := slog.NewTextHandler(writer, opts)
	return &slogLogger{
		logger: slog.New(handler),
	}
}

// Default returns a JSON logger on stderr at Info level.
func Default() Logger {
	return NewWithLevel(LevelInfo)
}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return &noopLogger{}
}
