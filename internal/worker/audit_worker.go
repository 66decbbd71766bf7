// Package worker processes transaction events off the queue and appends
// them to the audit log.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"catatuang/internal/amqp"
	"catatuang/internal/storage"
)

// Recorder is the slice of the audit log the worker needs.
type Recorder interface {
	Record(ctx context.Context, e storage.Entry) error
}

type AuditWorker struct {
	log Recorder
}

func NewAuditWorker(log Recorder) *AuditWorker {
	return &AuditWorker{log: log}
}

// HandleEvent records a single transaction event. An error here makes
// the consumer requeue the delivery.
func (w *AuditWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	entry := storage.Entry{
		Op:            event.Op,
		TransactionID: event.ID,
		OwnerID:       event.OwnerID,
		OccurredAt:    event.Timestamp,
	}
	if err := w.log.Record(ctx, entry); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	slog.InfoContext(ctx, "Audited transaction event",
		"operation", event.Op,
		"id", event.ID,
		"owner_id", event.OwnerID)
	return nil
}
