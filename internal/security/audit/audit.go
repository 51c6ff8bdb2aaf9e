package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits structured audit events for mutating API actions
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new audit logger
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// LogAction records an action against a resource path
func (al *Logger) LogAction(ctx context.Context, userID, action, resource, status string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.Time("timestamp", time.Now()),
	)
}

// LogDenied records a rejected access attempt
func (al *Logger) LogDenied(ctx context.Context, userID, reason string) {
	al.LogAction(ctx, userID, "access_denied", "api", reason)
}
