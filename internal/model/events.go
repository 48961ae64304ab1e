package model

import "context"

// EventKind names a change signal.
type EventKind string

const (
	// EventAgreementsUpdated is published in-process after a local save.
	EventAgreementsUpdated EventKind = "agreements.updated"
	// EventStorageChanged is a local-tier change made by another process.
	EventStorageChanged EventKind = "storage.changed"
	// EventRemoteChanged is a change of the remote agreements table.
	EventRemoteChanged EventKind = "remote.changed"
)

// Event is a change notification. Key is the storage key or the remote row id.
type Event struct {
	Kind   EventKind `json:"kind"`
	Key    string    `json:"key"`
	Origin string    `json:"origin"`
}

// Publisher delivers events to same-process observers.
type Publisher interface {
	Publish(event Event)
}

// Broadcaster delivers events to observers in other processes.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event) error
}
