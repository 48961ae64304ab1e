package local

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

var _ model.LocalAgreementStore = (*AgreementStorage)(nil)

// AgreementStorage is the durable local copy of the agreement collection.
type AgreementStorage struct {
	kv          model.KeyValueStore
	publisher   model.Publisher
	broadcaster model.Broadcaster
	origin      string
	logger      *logger.Logger

	// mu guards every write of the collection within the process.
	mu sync.Mutex
}

func NewAgreementStorage(
	kv model.KeyValueStore,
	publisher model.Publisher,
	broadcaster model.Broadcaster,
	origin string,
	logger *logger.Logger,
) *AgreementStorage {
	return &AgreementStorage{
		kv:          kv,
		publisher:   publisher,
		broadcaster: broadcaster,
		origin:      origin,
		logger:      logger,
	}
}

// Load returns the stored collection. It never fails: an absent or malformed
// value is reset to an empty collection, and a read error yields an empty one.
func (s *AgreementStorage) Load(ctx context.Context) []model.Agreement {
	var agreements []model.Agreement
	err := readJSON(ctx, s.kv, model.KeyAgreements, &agreements)
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.reset(ctx, "absent")
		return []model.Agreement{}
	case errors.Is(err, errMalformed):
		s.reset(ctx, "malformed")
		return []model.Agreement{}
	case err != nil:
		s.logger.Error("Agreement storage: failed to load agreements", "error", err)
		return []model.Agreement{}
	case agreements == nil:
		s.reset(ctx, "not a list")
		return []model.Agreement{}
	}

	for i := range agreements {
		if agreements[i].DeleteRequestedBy == nil {
			agreements[i].DeleteRequestedBy = []string{}
		}
	}
	return agreements
}

// reset persists an empty collection without emitting change events.
func (s *AgreementStorage) reset(ctx context.Context, reason string) {
	s.logger.Warn("Agreement storage: resetting agreements", "reason", reason)
	if err := writeJSON(ctx, s.kv, model.KeyAgreements, []model.Agreement{}); err != nil {
		s.logger.Error("Agreement storage: failed to reset agreements", "error", err)
	}
}

// Save replaces the stored collection and emits one in-process event and one
// cross-process broadcast. A nil collection is rejected.
func (s *AgreementStorage) Save(ctx context.Context, agreements []model.Agreement) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, agreements)
}

// Update loads the collection, applies fn and saves the result while holding
// the write lock. fn reports whether it changed anything; an unchanged
// collection is not written and counts as success.
func (s *AgreementStorage) Update(ctx context.Context, fn func([]model.Agreement) ([]model.Agreement, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	agreements, changed := fn(s.Load(ctx))
	if !changed {
		return true
	}
	return s.save(ctx, agreements)
}

func (s *AgreementStorage) save(ctx context.Context, agreements []model.Agreement) bool {
	if agreements == nil {
		s.logger.Warn("Agreement storage: refusing to save a nil collection")
		return false
	}

	if err := writeJSON(ctx, s.kv, model.KeyAgreements, agreements); err != nil {
		s.logger.Error("Agreement storage: failed to save agreements", "error", err, "count", len(agreements))
		return false
	}

	event := model.Event{Kind: model.EventAgreementsUpdated, Key: model.KeyAgreements, Origin: s.origin}
	s.publisher.Publish(event)

	event.Kind = model.EventStorageChanged
	if err := s.broadcaster.Broadcast(ctx, event); err != nil {
		s.logger.Warn("Agreement storage: failed to broadcast change", "error", err)
	}

	s.logger.Debug("Agreement storage: saved agreements", "count", len(agreements))
	return true
}

// FindByID scans the stored collection for id.
func (s *AgreementStorage) FindByID(ctx context.Context, id string) (model.Agreement, bool) {
	for _, a := range s.Load(ctx) {
		if a.ID == id {
			return a, true
		}
	}
	return model.Agreement{}, false
}

// Ensure appends agreement when its id is not stored yet.
func (s *AgreementStorage) Ensure(ctx context.Context, agreement model.Agreement) bool {
	return s.Update(ctx, func(agreements []model.Agreement) ([]model.Agreement, bool) {
		for _, a := range agreements {
			if a.ID == agreement.ID {
				return agreements, false
			}
		}
		s.logger.Debug("Agreement storage: backfilling agreement", "agreement_id", agreement.ID)
		return append(agreements, agreement.Clone()), true
	})
}

// Upsert replaces the stored agreement with the same id or appends it.
func (s *AgreementStorage) Upsert(ctx context.Context, agreement model.Agreement) bool {
	return s.Update(ctx, func(agreements []model.Agreement) ([]model.Agreement, bool) {
		i := slices.IndexFunc(agreements, func(a model.Agreement) bool { return a.ID == agreement.ID })
		if i >= 0 {
			agreements[i] = agreement.Clone()
			return agreements, true
		}
		return append(agreements, agreement.Clone()), true
	})
}

// Remove drops id from the stored collection.
func (s *AgreementStorage) Remove(ctx context.Context, id string) bool {
	return s.Update(ctx, func(agreements []model.Agreement) ([]model.Agreement, bool) {
		n := len(agreements)
		agreements = slices.DeleteFunc(agreements, func(a model.Agreement) bool { return a.ID == id })
		return agreements, len(agreements) != n
	})
}

// Clear removes every stored agreement.
func (s *AgreementStorage) Clear(ctx context.Context) bool {
	return s.Save(ctx, []model.Agreement{})
}
