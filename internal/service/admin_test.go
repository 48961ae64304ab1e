package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/model"
)

func TestAgreements_AdminOnly(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	calls := map[string]func(model.Caller) error{
		"all agreements": func(c model.Caller) error {
			_, err := h.engine.AllAgreements(ctx, c)
			return err
		},
		"clear all": func(c model.Caller) error {
			_, err := h.engine.ClearAll(ctx, c)
			return err
		},
		"stats": func(c model.Caller) error {
			_, err := h.engine.Stats(ctx, c)
			return err
		},
		"logs": func(c model.Caller) error {
			_, err := h.engine.Logs(ctx, c)
			return err
		},
		"clear logs": func(c model.Caller) error {
			return h.engine.ClearLogs(ctx, c)
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, call(anon), apperrors.ErrUnauthenticated)
			require.ErrorIs(t, call(alice), apperrors.ErrUnauthorized)
		})
	}
}

func TestAgreements_ClearAll(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	first := h.create(t, alice, "coffee")
	second := h.accepted(t, bob, carol)

	out, err := h.engine.ClearAll(ctx, admin)
	require.NoError(t, err)
	assert.True(t, out.Removed)
	assert.Empty(t, out.Warnings)

	assert.Empty(t, h.repo.Snapshot())
	assert.Empty(t, h.local.Load(ctx))
	for _, id := range []string{first.ID, second.ID} {
		_, err := h.table.GetByID(ctx, id)
		require.ErrorIs(t, err, model.ErrNotFound)
	}

	entry := h.lastLog(t)
	assert.Equal(t, model.ActionAdminClear, entry.Action)
	assert.Equal(t, "Cleared 2 agreements", entry.Details)
}

func TestAgreements_ClearAll_RemoteDown(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.create(t, alice, "coffee")
	h.remote.readErr = errors.New("offline")
	h.remote.deleteErr = errors.New("offline")

	out, err := h.engine.ClearAll(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{WarningRemoteWrite}, out.Warnings)
	assert.Empty(t, h.local.Load(ctx))
	assert.Empty(t, h.repo.Snapshot())
}

func TestAgreements_Stats(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	auth := h.newAuth(t)
	require.NoError(t, auth.EnsureAdmin(ctx, "admin@pactpal.com", "admin123", "PactPal Admin"))
	_, err := auth.Signup(ctx, "alice@example.com", "secret1", "Alice")
	require.NoError(t, err)

	h.create(t, alice, "coffee")
	h.accepted(t, alice, bob)

	stats, err := h.engine.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 2, stats.Agreements)
	assert.Equal(t, 1, stats.ByStatus[model.StatusPending])
	assert.Equal(t, 1, stats.ByStatus[model.StatusAccepted])
	assert.Equal(t, 0, stats.ByStatus[model.StatusDeclined])
	assert.Equal(t, 3, stats.AccessLogEntries)
}

func TestAgreements_Logs(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.accepted(t, alice, bob)

	entries, err := h.engine.Logs(ctx, admin)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionRespond, entries[0].Action, "newest first")
	assert.Equal(t, model.ActionCreate, entries[1].Action)

	require.NoError(t, h.engine.ClearLogs(ctx, admin))

	entries, err = h.engine.Logs(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
