package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

// Subscriber hands out change event channels.
type Subscriber interface {
	Subscribe() (<-chan model.Event, func())
}

// AgreementRepository holds the process-wide agreement snapshot merged from
// the local tier and the remote mirror.
type AgreementRepository struct {
	local  model.LocalAgreementStore
	mirror *Mirror
	logger *logger.Logger

	mu         sync.RWMutex
	agreements []model.Agreement

	// mutation serializes lifecycle mutations with reloads.
	mutation sync.Mutex
}

func NewAgreementRepository(local model.LocalAgreementStore, mirror *Mirror, logger *logger.Logger) *AgreementRepository {
	return &AgreementRepository{
		local:      local,
		mirror:     mirror,
		logger:     logger,
		agreements: []model.Agreement{},
	}
}

// Serialize runs fn while no other mutation or reload is in flight.
func (r *AgreementRepository) Serialize(fn func() error) error {
	r.mutation.Lock()
	defer r.mutation.Unlock()
	return fn()
}

// GetAll projects the snapshot for userID. Only admins see agreements they
// are not a party of.
func (r *AgreementRepository) GetAll(userID string, isAdmin bool) model.AgreementViews {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := model.AgreementViews{
		Sent:     []model.Agreement{},
		Received: []model.Agreement{},
		Combined: []model.Agreement{},
	}
	for _, a := range r.agreements {
		if userID == "" {
			break
		}
		if a.CreatorID == userID {
			views.Sent = append(views.Sent, a.Clone())
		}
		if a.RecipientID == userID {
			views.Received = append(views.Received, a.Clone())
		}
		if a.InvolvesUser(userID) {
			views.Combined = append(views.Combined, a.Clone())
		}
	}

	if !isAdmin {
		views.All = slices.Clone(views.Combined)
		return views
	}
	views.All = make([]model.Agreement, 0, len(r.agreements))
	for _, a := range r.agreements {
		views.All = append(views.All, a.Clone())
	}
	return views
}

// GetByID looks id up in memory, then the remote mirror, then the local tier.
// Downstream hits are kept in memory.
func (r *AgreementRepository) GetByID(ctx context.Context, id string) (model.Agreement, bool) {
	if a, ok := r.memory(id); ok {
		return a, true
	}

	if a, ok := r.mirror.FetchByID(ctx, id); ok {
		r.Put(a)
		return a, true
	}

	if a, ok := r.local.FindByID(ctx, id); ok {
		r.Put(a)
		return a, true
	}
	return model.Agreement{}, false
}

// Fresh reads id for a read-before-write: remote first, then the local tier,
// then memory.
func (r *AgreementRepository) Fresh(ctx context.Context, id string) (model.Agreement, bool) {
	if a, ok := r.mirror.FetchByID(ctx, id); ok {
		return a, true
	}
	if a, ok := r.local.FindByID(ctx, id); ok {
		return a, true
	}
	return r.memory(id)
}

func (r *AgreementRepository) memory(id string) (model.Agreement, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.agreements {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return model.Agreement{}, false
}

// Reload rebuilds the snapshot from the local tier merged with every remote
// row. A remote failure keeps the local collection.
func (r *AgreementRepository) Reload(ctx context.Context) {
	r.mutation.Lock()
	defer r.mutation.Unlock()

	agreements := r.local.Load(ctx)
	remote, err := r.mirror.FetchAll(ctx)
	if err != nil {
		r.logger.Warn("Agreement repository: remote unavailable, using local agreements",
			"error", err.Error())
	} else {
		agreements = Merge(agreements, remote)
	}

	r.replace(agreements)
	r.logger.Debug("Agreement repository: reloaded", "count", len(agreements))
}

// ReloadForUser merges the remote rows of userID into the snapshot. Rows of
// other users are left untouched since the snapshot is shared by every
// session of the process.
func (r *AgreementRepository) ReloadForUser(ctx context.Context, userID string) {
	r.mutation.Lock()
	defer r.mutation.Unlock()

	remote, err := r.mirror.FetchForUser(ctx, userID)
	if err != nil {
		r.logger.Warn("Agreement repository: remote unavailable, keeping snapshot",
			"user_id", userID,
			"error", err.Error())
		return
	}

	r.mu.Lock()
	r.agreements = Merge(r.agreements, remote)
	count := len(r.agreements)
	r.mu.Unlock()

	r.logger.Debug("Agreement repository: reloaded for user",
		"user_id", userID,
		"rows", len(remote),
		"count", count)
}

// Watch reloads on every change event and on every tick of interval until
// ctx is done.
func (r *AgreementRepository) Watch(ctx context.Context, sub Subscriber, interval time.Duration) error {
	events, unsubscribe := sub.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			r.logger.Debug("Agreement repository: change event",
				"kind", event.Kind,
				"key", event.Key)
			r.Reload(ctx)
		case <-ticker.C:
			r.Reload(ctx)
		}
	}
}

// Put inserts a or replaces the agreement with the same id.
func (r *AgreementRepository) Put(a model.Agreement) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.agreements {
		if r.agreements[i].ID == a.ID {
			r.agreements[i] = a.Clone()
			return
		}
	}
	r.agreements = append(r.agreements, a.Clone())
}

// Remove drops id from memory and reports whether it was present.
func (r *AgreementRepository) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.agreements)
	r.agreements = slices.DeleteFunc(r.agreements, func(a model.Agreement) bool {
		return a.ID == id
	})
	return len(r.agreements) != n
}

// Snapshot returns a copy of every agreement in memory.
func (r *AgreementRepository) Snapshot() []model.Agreement {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Agreement, 0, len(r.agreements))
	for _, a := range r.agreements {
		out = append(out, a.Clone())
	}
	return out
}

// Reset empties the snapshot.
func (r *AgreementRepository) Reset() {
	r.replace([]model.Agreement{})
}

func (r *AgreementRepository) replace(agreements []model.Agreement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agreements = agreements
}

// StatusAll disables status filtering in Filter.
const StatusAll = "all"

// Filter keeps the agreements whose message or party names contain query,
// ignoring case, and whose status matches status. An empty query or the
// StatusAll status match everything.
func Filter(agreements []model.Agreement, query, status string) []model.Agreement {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]model.Agreement, 0, len(agreements))
	for _, a := range agreements {
		if status != "" && status != StatusAll && string(a.Status) != status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(a.Message), query) &&
			!strings.Contains(strings.ToLower(a.CreatorName), query) &&
			!strings.Contains(strings.ToLower(a.RecipientName), query) {
			continue
		}
		out = append(out, a)
	}
	return out
}
