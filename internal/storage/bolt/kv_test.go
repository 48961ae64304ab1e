package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/pactpal-server/internal/model"
)

func openTemp(t *testing.T) (*KV, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	kv, err := Open(path)
	require.NoError(t, err)
	return kv, path
}

func TestKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, _ := openTemp(t)
	t.Cleanup(func() { _ = kv.Close() })

	_, err := kv.Get(ctx, model.KeyAgreements)
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, kv.Put(ctx, model.KeyAgreements, []byte(`[{"id":"a1"}]`)))
	got, err := kv.Get(ctx, model.KeyAgreements)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a1"}]`, string(got))

	require.NoError(t, kv.Put(ctx, model.KeyAgreements, []byte(`[]`)))
	got, err = kv.Get(ctx, model.KeyAgreements)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, kv.Delete(ctx, model.KeyAgreements))
	_, err = kv.Get(ctx, model.KeyAgreements)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestKV_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	kv, path := openTemp(t)

	require.NoError(t, kv.Put(ctx, model.KeyNotifications, []byte(`{"u1":true}`)))
	require.NoError(t, kv.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(ctx, model.KeyNotifications)
	require.NoError(t, err)
	assert.JSONEq(t, `{"u1":true}`, string(got))
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "state.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open bolt database")
}
