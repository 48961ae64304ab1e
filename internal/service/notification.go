package service

import (
	"context"

	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

// Notifications tracks whether a user has unseen counterparty activity.
type Notifications struct {
	store  model.NotificationStore
	logger *logger.Logger
}

func NewNotifications(store model.NotificationStore, logger *logger.Logger) *Notifications {
	return &Notifications{store: store, logger: logger}
}

func (n *Notifications) HasUnread(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	unread, err := n.store.Get(ctx, userID)
	if err != nil {
		n.logger.Error("Notifications: failed to read flag",
			"user_id", userID,
			"error", err.Error())
		return false
	}
	return unread
}

// MarkUnread reports whether the flag was persisted.
func (n *Notifications) MarkUnread(ctx context.Context, userID string) bool {
	return n.set(ctx, userID, true)
}

// Clear reports whether the flag was persisted.
func (n *Notifications) Clear(ctx context.Context, userID string) bool {
	return n.set(ctx, userID, false)
}

func (n *Notifications) set(ctx context.Context, userID string, unread bool) bool {
	if userID == "" {
		return true
	}
	if err := n.store.Set(ctx, userID, unread); err != nil {
		n.logger.Error("Notifications: failed to write flag",
			"user_id", userID,
			"unread", unread,
			"error", err.Error())
		return false
	}
	return true
}
