package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/repository/local"
	"github.com/dtroode/pactpal-server/internal/repository/memory"
	memorykv "github.com/dtroode/pactpal-server/internal/storage/memory"
	"github.com/dtroode/pactpal-server/internal/testutil"
)

var (
	alice = model.Caller{ID: "u1", Name: "Alice", Role: model.RoleUser}
	bob   = model.Caller{ID: "u2", Name: "Bob", Role: model.RoleUser}
	carol = model.Caller{ID: "u3", Name: "Carol", Role: model.RoleUser}
	admin = model.Caller{ID: AdminID, Name: "PactPal Admin", Role: model.RoleAdmin}
	anon  = model.Caller{}
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

// flakyRemote fails the configured remote writes.
type flakyRemote struct {
	model.RemoteAgreementStore
	createErr error
	updateErr error
	deleteErr error
	readErr   error
}

func (f *flakyRemote) Create(ctx context.Context, a model.Agreement) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.RemoteAgreementStore.Create(ctx, a)
}

func (f *flakyRemote) Update(ctx context.Context, a model.Agreement) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.RemoteAgreementStore.Update(ctx, a)
}

func (f *flakyRemote) SoftDelete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.RemoteAgreementStore.SoftDelete(ctx, id)
}

func (f *flakyRemote) GetByID(ctx context.Context, id string) (model.Agreement, error) {
	if f.readErr != nil {
		return model.Agreement{}, f.readErr
	}
	return f.RemoteAgreementStore.GetByID(ctx, id)
}

func (f *flakyRemote) GetAll(ctx context.Context) ([]model.Agreement, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.RemoteAgreementStore.GetAll(ctx)
}

func (f *flakyRemote) GetForUser(ctx context.Context, userID string) ([]model.Agreement, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.RemoteAgreementStore.GetForUser(ctx, userID)
}

type harness struct {
	kv            *testutil.FailingKV
	table         *memory.AgreementRepository
	remote        *flakyRemote
	events        *testutil.EventRecorder
	local         *local.AgreementStorage
	mirror        *Mirror
	repo          *AgreementRepository
	notifications *Notifications
	accessLog     *AccessLog
	users         *local.UserRepository
	engine        *Agreements
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		kv:     &testutil.FailingKV{KeyValueStore: memorykv.NewKV()},
		table:  memory.NewAgreementRepository(),
		events: &testutil.EventRecorder{},
	}
	h.remote = &flakyRemote{RemoteAgreementStore: h.table}

	log := testutil.MakeNoopLogger()
	h.local = local.NewAgreementStorage(h.kv, h.events, h.events, "test", log)
	h.mirror = NewMirror(h.remote, h.local, log)
	h.repo = NewAgreementRepository(h.local, h.mirror, log)
	h.notifications = NewNotifications(local.NewNotificationRepository(h.kv, h.events, "test", log), log)
	h.accessLog = NewAccessLog(local.NewAccessLogRepository(h.kv), log)
	h.accessLog.now = func() time.Time { return fixedNow }
	h.users = local.NewUserRepository(h.kv)
	h.engine = NewAgreements(h.repo, h.local, h.mirror, h.notifications, h.accessLog, h.users, log)
	h.engine.now = func() time.Time { return fixedNow }

	n := 0
	h.engine.newID = func() string {
		n++
		return fmt.Sprintf("a%d", n)
	}
	return h
}

// create makes caller author a new agreement and returns it.
func (h *harness) create(t *testing.T, caller model.Caller, message string) model.Agreement {
	t.Helper()
	out, err := h.engine.Create(context.Background(), caller, message)
	require.NoError(t, err)
	require.NotNil(t, out.Agreement)
	return *out.Agreement
}

// accepted creates an agreement by creator accepted by recipient.
func (h *harness) accepted(t *testing.T, creator, recipient model.Caller) model.Agreement {
	t.Helper()
	a := h.create(t, creator, "coffee every Monday")
	out, err := h.engine.Respond(context.Background(), recipient, a.ID, true)
	require.NoError(t, err)
	return *out.Agreement
}

// seed stores a directly in the remote table and the local tier.
func (h *harness) seed(t *testing.T, a model.Agreement) {
	t.Helper()
	_, err := h.table.Create(context.Background(), a)
	require.NoError(t, err)
	require.True(t, h.local.Ensure(context.Background(), a))
	h.repo.Put(a)
}

func (h *harness) lastLog(t *testing.T) model.AccessLogEntry {
	t.Helper()
	entries, err := h.accessLog.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	return entries[len(entries)-1]
}

func (h *harness) newAuth(t *testing.T) *Auth {
	t.Helper()
	log := testutil.MakeNoopLogger()
	tokens := NewTokenService(fakeTokens{}, local.NewRefreshTokenRepository(h.kv), testRefreshTTL, log)
	auth := NewAuth(h.users, tokens, h.repo, log)
	auth.cost = bcrypt.MinCost
	return auth
}

// fakeTokens issues tokens that spell out their user id.
type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(userID string) (string, error) {
	return "access:" + userID, nil
}

func (fakeTokens) GenerateRefreshToken(userID string) (string, string, error) {
	return "refresh:" + userID, "jti:" + userID + ":" + fmt.Sprint(time.Now().UnixNano()), nil
}

func (fakeTokens) ParseAccessToken(token string) (string, error) {
	var userID string
	if _, err := fmt.Sscanf(token, "access:%s", &userID); err != nil {
		return "", fmt.Errorf("malformed token: %w", err)
	}
	return userID, nil
}

func (fakeTokens) ParseRefreshToken(string) (string, string, error) {
	return "", "", fmt.Errorf("not supported")
}
