package local

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

var _ model.NotificationStore = (*NotificationRepository)(nil)

// NotificationRepository stores unread flags as one userId -> bool object.
type NotificationRepository struct {
	kv          model.KeyValueStore
	broadcaster model.Broadcaster
	origin      string
	logger      *logger.Logger
	mu          sync.Mutex
}

func NewNotificationRepository(kv model.KeyValueStore, broadcaster model.Broadcaster, origin string, logger *logger.Logger) *NotificationRepository {
	return &NotificationRepository{kv: kv, broadcaster: broadcaster, origin: origin, logger: logger}
}

func (r *NotificationRepository) Get(ctx context.Context, userID string) (bool, error) {
	flags, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	return flags[userID], nil
}

func (r *NotificationRepository) Set(ctx context.Context, userID string, unread bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	flags, err := r.load(ctx)
	if errors.Is(err, errMalformed) {
		r.logger.Warn("Notification repository: replacing malformed flags", "error", err)
		flags = map[string]bool{}
	} else if err != nil {
		return err
	}

	flags[userID] = unread
	if err := writeJSON(ctx, r.kv, model.KeyNotifications, flags); err != nil {
		return err
	}

	event := model.Event{Kind: model.EventStorageChanged, Key: model.KeyNotifications, Origin: r.origin}
	if err := r.broadcaster.Broadcast(ctx, event); err != nil {
		r.logger.Warn("Notification repository: failed to broadcast change", "error", err)
	}
	return nil
}

func (r *NotificationRepository) load(ctx context.Context) (map[string]bool, error) {
	flags := map[string]bool{}
	err := readJSON(ctx, r.kv, model.KeyNotifications, &flags)
	if errors.Is(err, model.ErrNotFound) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}
	if flags == nil {
		flags = map[string]bool{}
	}
	return flags, nil
}
