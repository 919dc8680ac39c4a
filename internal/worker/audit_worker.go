package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/annotation-auth/internal/events"
)

// StartAuditWorker subscribes an audit logger to token lifecycle events.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil || logger == nil {
		return
	}
	audit := logger.Named("audit")
	handler := func(_ context.Context, event events.Event) error {
		audit.Info(string(event.Type),
			zap.String("event_id", event.ID),
			zap.String("actor", event.Actor.String()),
			zap.Time("timestamp", event.Timestamp),
			zap.Any("payload", event.Payload),
		)
		return nil
	}
	dispatcher.Subscribe(events.EventAPITokenCreated, handler)
	dispatcher.Subscribe(events.EventSessionTokenIssued, handler)
}
