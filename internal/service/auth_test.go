package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	servermocks "github.com/dtroode/pactpal-server/internal/mocks"
	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/testutil"
)

func TestAuth_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	auth := h.newAuth(t)

	session, err := auth.Signup(ctx, " alice@example.com ", "secret1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", session.User.Email)
	assert.Equal(t, model.RoleUser, session.User.Role)
	assert.Equal(t, "access:"+session.User.ID, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	stored, err := h.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	login, err := auth.Login(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.User, login.User)

	caller, err := auth.Caller(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, caller.ID)
	assert.Equal(t, "Alice", caller.Name)
	assert.False(t, caller.IsAdmin())
}

func TestAuth_Signup_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantErr  error
	}{
		{"missing email", "", "secret1", "Alice", apperrors.ErrInvalidArgument},
		{"missing name", "alice@example.com", "secret1", " ", apperrors.ErrInvalidArgument},
		{"short password", "alice@example.com", "12345", "Alice", apperrors.ErrInvalidArgument},
		{"duplicate email", "TAKEN@example.com", "secret1", "Alice", apperrors.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t)
			auth := h.newAuth(t)
			_, err := auth.Signup(ctx, "taken@example.com", "secret1", "Taken")
			require.NoError(t, err)

			_, err = auth.Signup(ctx, tt.email, tt.password, tt.userName)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	auth := h.newAuth(t)
	_, err := auth.Signup(ctx, "alice@example.com", "secret1", "Alice")
	require.NoError(t, err)

	_, err = auth.Login(ctx, "alice@example.com", "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = auth.Login(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid email or password", appErr.Message)
}

func TestAuth_Login_ReloadsUserAgreements(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	auth := h.newAuth(t)
	session, err := auth.Signup(ctx, "alice@example.com", "secret1", "Alice")
	require.NoError(t, err)

	_, err = h.table.Create(ctx, testutil.Agreement("remote-1", session.User.ID, "", model.StatusPending))
	require.NoError(t, err)

	_, err = auth.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	views := h.repo.GetAll(session.User.ID, false)
	assert.Equal(t, []string{"remote-1"}, ids(views.Sent))
}

func TestAuth_Login_LeavesOtherSessionsAlone(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	auth := h.newAuth(t)
	first, err := auth.Signup(ctx, "alice@example.com", "secret1", "Alice")
	require.NoError(t, err)
	second, err := auth.Signup(ctx, "bob@example.com", "secret2", "Bob")
	require.NoError(t, err)

	_, err = h.table.Create(ctx, testutil.Agreement("alice-1", first.User.ID, "", model.StatusPending))
	require.NoError(t, err)
	_, err = h.table.Create(ctx, testutil.Agreement("bob-1", second.User.ID, "", model.StatusPending))
	require.NoError(t, err)

	_, err = auth.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	before := h.repo.GetAll(first.User.ID, false)

	_, err = auth.Login(ctx, "bob@example.com", "secret2")
	require.NoError(t, err)

	assert.Equal(t, before, h.repo.GetAll(first.User.ID, false))
	assert.Equal(t, []string{"bob-1"}, ids(h.repo.GetAll(second.User.ID, false).Sent))
}

func TestAuth_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	auth := h.newAuth(t)

	require.NoError(t, auth.EnsureAdmin(ctx, "admin@pactpal.com", "admin123", "PactPal Admin"))
	require.NoError(t, auth.EnsureAdmin(ctx, "admin@pactpal.com", "other", "Other"))

	users, err := h.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, AdminID, users[0].ID)
	assert.Equal(t, model.RoleAdmin, users[0].Role)

	session, err := auth.Login(ctx, "admin@pactpal.com", "admin123")
	require.NoError(t, err)
	caller, err := auth.Caller(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.True(t, caller.IsAdmin())
}

func TestAuth_Caller_Rejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	auth := h.newAuth(t)

	_, err := auth.Caller(ctx, "garbage")
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = auth.Caller(ctx, "access:deleted-user")
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestAuth_ListUsers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	auth := h.newAuth(t)
	require.NoError(t, auth.EnsureAdmin(ctx, "admin@pactpal.com", "admin123", "PactPal Admin"))
	_, err := auth.Signup(ctx, "alice@example.com", "secret1", "Alice")
	require.NoError(t, err)

	profiles, err := auth.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "admin@pactpal.com", profiles[0].Email)

	_, err = auth.ListUsers(ctx, alice)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = auth.ListUsers(ctx, anon)
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestAuth_Profile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	auth := h.newAuth(t)
	session, err := auth.Signup(ctx, "alice@example.com", "secret1", "Alice")
	require.NoError(t, err)

	profile, err := auth.Profile(ctx, model.Caller{ID: session.User.ID})
	require.NoError(t, err)
	assert.Equal(t, session.User, profile)

	_, err = auth.Profile(ctx, model.Caller{ID: "ghost"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAuth_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	users := &servermocks.UserStore{}
	manager := &servermocks.TokenManager{}
	store := &servermocks.RefreshTokenStore{}
	log := testutil.MakeNoopLogger()

	user := model.User{ID: "u1", Email: "alice@example.com", Name: "Alice", Role: model.RoleUser}
	stored := model.RefreshToken{
		JTI:       "jti-1",
		UserID:    "u1",
		TokenHash: hashRefresh("refresh-1"),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	manager.On("ParseRefreshToken", "refresh-1").Return("u1", "jti-1", nil).Twice()
	store.On("GetByJTI", ctx, "jti-1").Return(stored, nil).Once()
	store.On("RevokeByJTI", ctx, "jti-1").Return(nil).Twice()
	manager.On("GenerateAccessToken", "u1").Return("access-2", nil).Once()
	manager.On("GenerateRefreshToken", "u1").Return("refresh-2", "jti-2", nil).Once()
	store.On("Create", ctx, mock.Anything).Return(nil).Once()
	manager.On("ParseAccessToken", "access-2").Return("u1", nil).Once()
	users.On("GetByID", ctx, "u1").Return(user, nil).Once()

	tokens := NewTokenService(manager, store, testRefreshTTL, log)
	auth := NewAuth(users, tokens, nil, log)

	session, err := auth.Refresh(ctx, "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", session.AccessToken)
	assert.Equal(t, "refresh-2", session.RefreshToken)
	assert.Equal(t, user.Profile(), session.User)

	require.NoError(t, auth.Logout(ctx, "refresh-1"))

	manager.On("ParseRefreshToken", "bogus").Return("", "", assert.AnError).Twice()
	_, err = auth.Refresh(ctx, "bogus")
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	require.ErrorIs(t, auth.Logout(ctx, "bogus"), apperrors.ErrUnauthenticated)

	manager.AssertExpectations(t)
	store.AssertExpectations(t)
}
