// Package memory provides an in-process remote agreements table used when no
// database is configured.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dtroode/pactpal-server/internal/model"
)

var _ model.RemoteAgreementStore = (*AgreementRepository)(nil)

// AgreementRepository keeps rows in insertion order and soft-deletes them.
type AgreementRepository struct {
	mu   sync.RWMutex
	rows []model.Agreement
}

func NewAgreementRepository() *AgreementRepository {
	return &AgreementRepository{}
}

func (r *AgreementRepository) GetByID(_ context.Context, id string) (model.Agreement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.index(id)
	if i < 0 || r.rows[i].IsDeleted {
		return model.Agreement{}, model.ErrNotFound
	}
	return r.rows[i].Clone(), nil
}

func (r *AgreementRepository) GetForUser(_ context.Context, userID string) ([]model.Agreement, error) {
	return r.filter(func(a model.Agreement) bool { return a.InvolvesUser(userID) }), nil
}

func (r *AgreementRepository) GetAll(_ context.Context) ([]model.Agreement, error) {
	return r.filter(func(model.Agreement) bool { return true }), nil
}

// filter returns live rows newest first.
func (r *AgreementRepository) filter(keep func(model.Agreement) bool) []model.Agreement {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Agreement{}
	for i := len(r.rows) - 1; i >= 0; i-- {
		if !r.rows[i].IsDeleted && keep(r.rows[i]) {
			out = append(out, r.rows[i].Clone())
		}
	}
	return out
}

func (r *AgreementRepository) Create(_ context.Context, agreement model.Agreement) (string, error) {
	if agreement.Message == "" {
		return "", fmt.Errorf("agreement message is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index(agreement.ID) >= 0 {
		return "", model.ErrAlreadyExists
	}
	r.rows = append(r.rows, agreement.Clone())
	return agreement.ID, nil
}

func (r *AgreementRepository) Update(_ context.Context, agreement model.Agreement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(agreement.ID)
	if i < 0 || r.rows[i].IsDeleted {
		return model.ErrNotFound
	}
	updated := agreement.Clone()
	updated.CreatedAt = r.rows[i].CreatedAt
	updated.CreatorID = r.rows[i].CreatorID
	updated.IsDeleted = false
	r.rows[i] = updated
	return nil
}

func (r *AgreementRepository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 || r.rows[i].IsDeleted {
		return model.ErrNotFound
	}
	r.rows[i].IsDeleted = true
	return nil
}

func (r *AgreementRepository) Ping(context.Context) error {
	return nil
}

func (r *AgreementRepository) index(id string) int {
	return slices.IndexFunc(r.rows, func(a model.Agreement) bool { return a.ID == id })
}
