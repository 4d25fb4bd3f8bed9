// Package worker records consumed transaction events as an append-only
// audit trail in the document store.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/events"
	"fintrack/internal/storage"
)

type AuditWorker struct {
	store  storage.Store
	logger *slog.Logger
}

func NewAuditWorker(store storage.Store, logger *slog.Logger) *AuditWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditWorker{store: store, logger: logger}
}

// HandleEvent records a single consumed event. An error makes the
// consumer nack and requeue the delivery.
func (w *AuditWorker) HandleEvent(ctx context.Context, e *events.TransactionEvent) error {
	entry := storage.AuditEntry{
		Action:        string(e.Action),
		TransactionID: e.TransactionID,
		OccurredAt:    e.At,
	}
	if err := w.store.RecordEvent(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	w.logger.InfoContext(ctx, "Recorded audit entry",
		"action", e.Action,
		"transaction_id", e.TransactionID)
	return nil
}
