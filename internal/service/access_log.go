package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

// AccessLog audits lifecycle operations. It is observability only and never
// fails the operation being audited.
type AccessLog struct {
	store  model.AccessLogStore
	logger *logger.Logger
	now    func() time.Time
}

func NewAccessLog(store model.AccessLogStore, logger *logger.Logger) *AccessLog {
	return &AccessLog{store: store, logger: logger, now: time.Now}
}

// Record appends entry, stamping it when it carries no timestamp.
func (l *AccessLog) Record(ctx context.Context, entry model.AccessLogEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	if err := l.store.Append(ctx, entry); err != nil {
		l.logger.Error("Access log: failed to record entry",
			"action", entry.Action,
			"user_id", entry.UserID,
			"agreement_id", entry.AgreementID,
			"error", err.Error())
	}
}

// List returns entries oldest first.
func (l *AccessLog) List(ctx context.Context) ([]model.AccessLogEntry, error) {
	entries, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list access log: %w", err)
	}
	return entries, nil
}

// ListRecent returns entries newest first.
func (l *AccessLog) ListRecent(ctx context.Context) ([]model.AccessLogEntry, error) {
	entries, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	return entries, nil
}

func (l *AccessLog) Clear(ctx context.Context) error {
	if err := l.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear access log: %w", err)
	}
	return nil
}
