package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/testutil"
)

func TestAgreementRepository(t *testing.T) {
	ctx := context.Background()
	r := NewAgreementRepository()

	first := testutil.Agreement("a1", "u1", "", model.StatusPending)
	second := testutil.Agreement("a2", "u2", "u1", model.StatusAccepted)
	other := testutil.Agreement("a3", "u3", "", model.StatusPending)

	for _, a := range []model.Agreement{first, second, other} {
		id, err := r.Create(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, a.ID, id)
	}

	_, err := r.Create(ctx, first)
	require.ErrorIs(t, err, model.ErrAlreadyExists)

	_, err = r.Create(ctx, model.Agreement{ID: "empty"})
	require.Error(t, err)

	mine, err := r.GetForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "a2", mine[0].ID, "newest first")

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	first.Status = model.StatusDeclined
	first.RecipientID = "u4"
	require.NoError(t, r.Update(ctx, first))
	got, err := r.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeclined, got.Status)
	assert.Equal(t, "u4", got.RecipientID)

	require.ErrorIs(t, r.Update(ctx, model.Agreement{ID: "missing"}), model.ErrNotFound)

	require.NoError(t, r.SoftDelete(ctx, "a1"))
	_, err = r.GetByID(ctx, "a1")
	require.ErrorIs(t, err, model.ErrNotFound)
	require.ErrorIs(t, r.SoftDelete(ctx, "a1"), model.ErrNotFound)

	first.Status = model.StatusAccepted
	require.ErrorIs(t, r.Update(ctx, first), model.ErrNotFound, "soft deleted rows stay deleted")
	_, err = r.GetByID(ctx, "a1")
	require.ErrorIs(t, err, model.ErrNotFound)

	all, err = r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NoError(t, r.Ping(ctx))
}

func TestAgreementRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewAgreementRepository()
	a := testutil.Agreement("a1", "u1", "u2", model.StatusAccepted)
	_, err := r.Create(ctx, a)
	require.NoError(t, err)

	got, err := r.GetByID(ctx, "a1")
	require.NoError(t, err)
	got.DeleteRequestedBy = append(got.DeleteRequestedBy, "u1")

	again, err := r.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, again.DeleteRequestedBy)
}
