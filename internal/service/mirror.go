package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

// Mirror fronts the remote agreements table and backfills hits into the
// local tier.
type Mirror struct {
	remote model.RemoteAgreementStore
	local  model.LocalAgreementStore
	logger *logger.Logger
}

func NewMirror(remote model.RemoteAgreementStore, local model.LocalAgreementStore, logger *logger.Logger) *Mirror {
	return &Mirror{
		remote: remote,
		local:  local,
		logger: logger,
	}
}

// FetchByID returns the remote copy of id. A remote error reads as absent.
func (m *Mirror) FetchByID(ctx context.Context, id string) (model.Agreement, bool) {
	a, err := m.remote.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Agreement{}, false
	}
	if err != nil {
		m.logger.Error("Mirror: failed to fetch agreement",
			"agreement_id", id,
			"error", err.Error())
		return model.Agreement{}, false
	}

	if !m.local.Ensure(ctx, a) {
		m.logger.Warn("Mirror: failed to backfill agreement into local storage",
			"agreement_id", id)
	}
	return a, true
}

func (m *Mirror) FetchForUser(ctx context.Context, userID string) ([]model.Agreement, error) {
	agreements, err := m.remote.GetForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agreements for user: %w", err)
	}
	return agreements, nil
}

func (m *Mirror) FetchAll(ctx context.Context) ([]model.Agreement, error) {
	agreements, err := m.remote.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agreements: %w", err)
	}
	return agreements, nil
}

// Create inserts a into the remote table and returns the stored id.
func (m *Mirror) Create(ctx context.Context, a model.Agreement) (string, error) {
	if strings.TrimSpace(a.Message) == "" {
		return "", apperrors.NewErrInvalidArgument("Agreement message is required")
	}

	id, err := m.remote.Create(ctx, a)
	if err != nil {
		m.logger.Error("Mirror: failed to create agreement",
			"agreement_id", a.ID,
			"error", err.Error())
		return "", apperrors.NewErrRemoteFailure(err)
	}
	if id == "" {
		return "", apperrors.NewErrRemoteFailure(errors.New("remote returned no id"))
	}
	return id, nil
}

// Update writes the full row of a. A row that is gone or soft deleted
// yields model.ErrNotFound and is never brought back.
func (m *Mirror) Update(ctx context.Context, a model.Agreement) error {
	err := m.remote.Update(ctx, a)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrNotFound
	}
	if err != nil {
		m.logger.Error("Mirror: failed to update agreement",
			"agreement_id", a.ID,
			"error", err.Error())
		return fmt.Errorf("failed to update agreement: %w", err)
	}
	return nil
}

// SoftDelete flags id as deleted. A row that is already gone counts as done.
func (m *Mirror) SoftDelete(ctx context.Context, id string) bool {
	err := m.remote.SoftDelete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return true
	}
	if err != nil {
		m.logger.Error("Mirror: failed to soft delete agreement",
			"agreement_id", id,
			"error", err.Error())
		return false
	}
	return true
}

func (m *Mirror) Ping(ctx context.Context) error {
	return m.remote.Ping(ctx)
}

// Merge reconciles local with remote. For ids in both the remote copy wins
// and keeps the local position; local-only ids stay and remote-only ids are
// appended in remote order.
func Merge(local, remote []model.Agreement) []model.Agreement {
	byID := make(map[string]model.Agreement, len(remote))
	for _, a := range remote {
		byID[a.ID] = a
	}

	merged := make([]model.Agreement, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local))
	for _, a := range local {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		if r, ok := byID[a.ID]; ok {
			merged = append(merged, r.Clone())
			continue
		}
		merged = append(merged, a.Clone())
	}
	for _, a := range remote {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		merged = append(merged, a.Clone())
	}
	return merged
}
