package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	servermocks "github.com/dtroode/pactpal-server/internal/mocks"
	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/repository/local"
	memorykv "github.com/dtroode/pactpal-server/internal/storage/memory"
	"github.com/dtroode/pactpal-server/internal/testutil"
)

func newMirror(remote model.RemoteAgreementStore) (*Mirror, *local.AgreementStorage) {
	log := testutil.MakeNoopLogger()
	events := &testutil.EventRecorder{}
	store := local.NewAgreementStorage(memorykv.NewKV(), events, events, "test", log)
	return NewMirror(remote, store, log), store
}

func TestMirror_FetchByID_Backfills(t *testing.T) {
	ctx := context.Background()
	remote := &servermocks.RemoteAgreementStore{}
	a := testutil.Agreement("a1", "u1", "", model.StatusPending)
	remote.On("GetByID", ctx, "a1").Return(a, nil).Once()

	m, store := newMirror(remote)

	got, ok := m.FetchByID(ctx, "a1")
	require.True(t, ok)
	assert.Equal(t, a, got)

	stored, ok := store.FindByID(ctx, "a1")
	require.True(t, ok)
	assert.Equal(t, a, stored)
	remote.AssertExpectations(t)
}

func TestMirror_FetchByID_Absent(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", model.ErrNotFound},
		{"remote error", errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			remote := &servermocks.RemoteAgreementStore{}
			remote.On("GetByID", ctx, "a1").Return(model.Agreement{}, tt.err).Once()

			m, store := newMirror(remote)

			_, ok := m.FetchByID(ctx, "a1")
			assert.False(t, ok)
			assert.Empty(t, store.Load(ctx))
		})
	}
}

func TestMirror_Create(t *testing.T) {
	ctx := context.Background()
	a := testutil.Agreement("a1", "u1", "", model.StatusPending)

	t.Run("success", func(t *testing.T) {
		remote := &servermocks.RemoteAgreementStore{}
		remote.On("Create", ctx, a).Return("a1", nil).Once()
		m, _ := newMirror(remote)

		id, err := m.Create(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, "a1", id)
	})

	t.Run("empty message is rejected before the network call", func(t *testing.T) {
		remote := &servermocks.RemoteAgreementStore{}
		m, _ := newMirror(remote)

		blank := a
		blank.Message = " \t"
		_, err := m.Create(ctx, blank)
		require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		remote.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("remote failure", func(t *testing.T) {
		remote := &servermocks.RemoteAgreementStore{}
		remote.On("Create", ctx, a).Return("", assert.AnError).Once()
		m, _ := newMirror(remote)

		_, err := m.Create(ctx, a)
		require.ErrorIs(t, err, apperrors.ErrRemoteFailure)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("no id returned", func(t *testing.T) {
		remote := &servermocks.RemoteAgreementStore{}
		remote.On("Create", ctx, a).Return("", nil).Once()
		m, _ := newMirror(remote)

		_, err := m.Create(ctx, a)
		require.ErrorIs(t, err, apperrors.ErrRemoteFailure)
	})
}

func TestMirror_Writes(t *testing.T) {
	ctx := context.Background()
	a := testutil.Agreement("a1", "u1", "u2", model.StatusAccepted)

	remote := &servermocks.RemoteAgreementStore{}
	remote.On("Update", ctx, a).Return(nil).Once()
	remote.On("Update", ctx, a).Return(model.ErrNotFound).Once()
	remote.On("Update", ctx, a).Return(assert.AnError).Once()
	remote.On("SoftDelete", ctx, "a1").Return(nil).Once()
	remote.On("SoftDelete", ctx, "a1").Return(model.ErrNotFound).Once()
	remote.On("SoftDelete", ctx, "a1").Return(assert.AnError).Once()

	m, _ := newMirror(remote)

	assert.NoError(t, m.Update(ctx, a))
	assert.ErrorIs(t, m.Update(ctx, a), model.ErrNotFound)
	assert.ErrorIs(t, m.Update(ctx, a), assert.AnError)
	assert.True(t, m.SoftDelete(ctx, "a1"))
	assert.True(t, m.SoftDelete(ctx, "a1"), "a row that is already gone counts as deleted")
	assert.False(t, m.SoftDelete(ctx, "a1"))
	remote.AssertExpectations(t)
}

func TestMirror_FetchForUser(t *testing.T) {
	ctx := context.Background()
	remote := &servermocks.RemoteAgreementStore{}
	rows := []model.Agreement{testutil.Agreement("a1", "u1", "", model.StatusPending)}
	remote.On("GetForUser", ctx, "u1").Return(rows, nil).Once()
	remote.On("GetForUser", ctx, "u2").Return(nil, assert.AnError).Once()

	m, _ := newMirror(remote)

	got, err := m.FetchForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	_, err = m.FetchForUser(ctx, "u2")
	require.ErrorIs(t, err, assert.AnError)
}

func TestMerge(t *testing.T) {
	localA := testutil.Agreement("a", "u1", "", model.StatusPending)
	localB := testutil.Agreement("b", "u1", "", model.StatusPending)
	remoteB := testutil.Agreement("b", "u1", "u2", model.StatusAccepted)
	remoteC := testutil.Agreement("c", "u2", "", model.StatusPending)
	remoteD := testutil.Agreement("d", "u3", "", model.StatusPending)

	tests := []struct {
		name   string
		local  []model.Agreement
		remote []model.Agreement
		want   []model.Agreement
	}{
		{
			name:   "both empty",
			local:  nil,
			remote: nil,
			want:   []model.Agreement{},
		},
		{
			name:   "remote wins and keeps local position",
			local:  []model.Agreement{localA, localB},
			remote: []model.Agreement{remoteB},
			want:   []model.Agreement{localA, remoteB},
		},
		{
			name:   "remote only ids are appended in remote order",
			local:  []model.Agreement{localA},
			remote: []model.Agreement{remoteD, remoteC},
			want:   []model.Agreement{localA, remoteD, remoteC},
		},
		{
			name:   "local only ids are kept",
			local:  []model.Agreement{localA, localB},
			remote: []model.Agreement{},
			want:   []model.Agreement{localA, localB},
		},
		{
			name:   "duplicate ids collapse",
			local:  []model.Agreement{localB, localB},
			remote: []model.Agreement{remoteB, remoteB},
			want:   []model.Agreement{remoteB},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.local, tt.remote)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
