package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dtroode/pactpal-server/internal/model"
)

// Agreement builds an agreement between creator and recipient. An empty
// recipient leaves the slot unbound.
func Agreement(id, creatorID, recipientID string, status model.AgreementStatus) model.Agreement {
	a := model.Agreement{
		ID:                id,
		Message:           "I owe you a coffee",
		CreatedAt:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		CreatorID:         creatorID,
		CreatorName:       "name-" + creatorID,
		Status:            status,
		DeleteRequestedBy: []string{},
	}
	if recipientID != "" {
		a.RecipientID = recipientID
		a.RecipientName = "name-" + recipientID
	}
	return a
}

// EventRecorder records published and broadcast events.
type EventRecorder struct {
	mu           sync.Mutex
	published    []model.Event
	broadcast    []model.Event
	BroadcastErr error
}

func (r *EventRecorder) Publish(event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, event)
}

func (r *EventRecorder) Broadcast(_ context.Context, event model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast = append(r.broadcast, event)
	return r.BroadcastErr
}

func (r *EventRecorder) Published() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.published...)
}

func (r *EventRecorder) Broadcasts() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.broadcast...)
}

// FailingKV fails reads or writes with the configured errors and delegates
// everything else.
type FailingKV struct {
	model.KeyValueStore
	GetErr error
	PutErr error
}

func (f *FailingKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	return f.KeyValueStore.Get(ctx, key)
}

func (f *FailingKV) Put(ctx context.Context, key string, value []byte) error {
	if f.PutErr != nil {
		return f.PutErr
	}
	return f.KeyValueStore.Put(ctx, key, value)
}
