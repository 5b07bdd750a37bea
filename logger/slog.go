package logger

import (
	"context"
	"log/slog"
)

// slogLogger adapts slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

// Debug logs a debug message with optional key-value pairs.
func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs an informational message with optional key-value pairs.
func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// With returns a logger that includes the given key-value pairs in every message.
func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{
		logger: l.logger.With(args...),
	}
}

// WithContext returns a logger bound to the context.
// slog takes the context per call, so this is a no-op.
func (l *slogLogger) WithContext(ctx context.Context) Logger {
	return l
}
