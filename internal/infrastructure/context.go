package infrastructure

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	apperrors "ipedsprep/internal/errors"
)

// GenerateTraceID creates a new unique trace ID using UUID v4
func GenerateTraceID() string {
	return uuid.New().String()
}

// EnsureTraceID ensures the context has a trace ID, generating one if needed
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return WithTraceID(ctx, GenerateTraceID())
	}
	return ctx
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// ErrorAttrs flattens an error for logging. AppError type and context
// keys become their own attributes.
func ErrorAttrs(err error) []any {
	if err == nil {
		return nil
	}
	args := []any{slog.String("error", err.Error())}

	var appErr *apperrors.AppError
	if !stderrors.As(err, &appErr) {
		return args
	}
	args = append(args, slog.String("error_type", string(appErr.Type)))

	keys := make([]string, 0, len(appErr.Context))
	for k := range appErr.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, slog.Any(k, appErr.Context[k]))
	}
	return args
}
