package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

// Notification channels. ChannelAgreements is fed by the agreements_changed
// trigger, ChannelStorage by Notifier.Broadcast.
const (
	ChannelStorage    = "pactpal_storage"
	ChannelAgreements = "pactpal_agreements"
)

const defaultRetryDelay = 5 * time.Second

var _ model.Broadcaster = (*Notifier)(nil)

// Notifier carries change events between processes over LISTEN/NOTIFY.
type Notifier struct {
	db         *Connection
	origin     string
	retryDelay time.Duration
	logger     *logger.Logger
}

func NewNotifier(db *Connection, origin string, logger *logger.Logger) *Notifier {
	return &Notifier{
		db:         db,
		origin:     origin,
		retryDelay: defaultRetryDelay,
		logger:     logger,
	}
}

// Broadcast sends event to every listening process.
func (n *Notifier) Broadcast(ctx context.Context, event model.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if _, err := n.db.Exec(ctx, `SELECT pg_notify($1, $2)`, ChannelStorage, string(payload)); err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}
	return nil
}

// Listen republishes notifications of other processes on publisher until ctx
// is cancelled. A dropped connection is re-established after a fixed delay.
func (n *Notifier) Listen(ctx context.Context, publisher model.Publisher) error {
	for {
		err := n.listenOnce(ctx, publisher)
		if ctx.Err() != nil {
			return nil
		}
		n.logger.Warn("Notifier: listen connection lost", "error", err, "retry_in", n.retryDelay.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(n.retryDelay):
		}
	}
}

func (n *Notifier) listenOnce(ctx context.Context, publisher model.Publisher) error {
	conn, err := n.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	for _, channel := range []string{ChannelStorage, ChannelAgreements} {
		if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", channel, err)
		}
	}
	n.logger.Info("Notifier: listening", "channels", []string{ChannelStorage, ChannelAgreements})

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if event, ok := n.decode(notification); ok {
			publisher.Publish(event)
		}
	}
}

// decode turns a notification into an event. Storage events sent by this
// process are dropped since they were already published in-process.
func (n *Notifier) decode(notification *pgconn.Notification) (model.Event, bool) {
	switch notification.Channel {
	case ChannelAgreements:
		return model.Event{Kind: model.EventRemoteChanged, Key: notification.Payload}, true
	case ChannelStorage:
		var event model.Event
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			n.logger.Warn("Notifier: dropping malformed notification", "error", err)
			return model.Event{}, false
		}
		if event.Origin == n.origin {
			return model.Event{}, false
		}
		event.Kind = model.EventStorageChanged
		return event, true
	default:
		return model.Event{}, false
	}
}
