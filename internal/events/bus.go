// Package events delivers change notifications between the storage tiers and
// the agreement repository.
package events

import (
	"context"
	"sync"

	"github.com/dtroode/pactpal-server/internal/model"
)

var _ model.Publisher = (*Bus)(nil)

// Bus fans events out to subscribers without blocking the publisher.
// Every subscriber holds at most one pending event, so a burst of events
// coalesces into a single wake-up.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan model.Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan model.Event)}
}

// Subscribe registers a subscriber. The returned function unsubscribes and
// closes the channel.
func (b *Bus) Subscribe() (<-chan model.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan model.Event, 1)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *Bus) Publish(event model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// NoopBroadcaster is used when no cross-process channel is configured.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Broadcast(context.Context, model.Event) error {
	return nil
}
