package checkout

import (
	"context"
	"log/slog"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier is the injected notification port for shopper-facing transient
// messages. Nothing in the checkout path writes to a process-wide dispatcher.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

// SlogNotifier logs notifications; the HTTP layer delivers them to the UI
// through response payloads instead.
type SlogNotifier struct{}

func (SlogNotifier) Notify(ctx context.Context, severity Severity, message string) {
	switch severity {
	case SeverityError:
		slog.ErrorContext(ctx, "notification", "message", message)
	case SeverityWarning:
		slog.WarnContext(ctx, "notification", "message", message)
	default:
		slog.InfoContext(ctx, "notification", "message", message)
	}
}
