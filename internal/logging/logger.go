// Package logging provides structured logging configuration using log/slog.
//
// Each conversion runs under an operation ID stored in its context, so all
// entries written for one import or export can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

type ctxKey int

const (
	opIDKey ctxKey = iota
	opNameKey
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// The CLI passes os.Stderr so logs never mix with exported data on stdout.
func Setup(w io.Writer, level, format string) {
	slog.SetDefault(New(w, level, format))
}

// New builds a logger without installing it as the default.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithOperation returns a context carrying a fresh operation ID for name.
// A context that already carries an ID keeps it, so nested calls log under
// the outermost operation.
func WithOperation(ctx context.Context, name string) context.Context {
	if OperationID(ctx) != "" {
		return ctx
	}
	ctx = context.WithValue(ctx, opIDKey, uuid.NewString())
	return context.WithValue(ctx, opNameKey, name)
}

// OperationID returns the operation ID stored in ctx, or "".
func OperationID(ctx context.Context) string {
	id, _ := ctx.Value(opIDKey).(string)
	return id
}

// FromContext returns a logger enriched with the operation in ctx.
//
// Usage:
//
//	ctx = logging.WithOperation(ctx, "csv import")
//	logger := logging.FromContext(ctx)
//	logger.Info("import started", "file", path)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if id := OperationID(ctx); id != "" {
		name, _ := ctx.Value(opNameKey).(string)
		logger = logger.With("op", name, "op_id", id)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
// This is useful for creating operation-specific loggers that carry
// consistent context through a multi-step process.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
