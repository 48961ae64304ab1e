package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/pactpal-server/internal/model"
)

// RemoteAgreementStore is a mock of model.RemoteAgreementStore.
type RemoteAgreementStore struct {
	mock.Mock
}

func (m *RemoteAgreementStore) GetByID(ctx context.Context, id string) (model.Agreement, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Agreement), args.Error(1)
}

func (m *RemoteAgreementStore) GetForUser(ctx context.Context, userID string) ([]model.Agreement, error) {
	args := m.Called(ctx, userID)
	agreements, _ := args.Get(0).([]model.Agreement)
	return agreements, args.Error(1)
}

func (m *RemoteAgreementStore) GetAll(ctx context.Context) ([]model.Agreement, error) {
	args := m.Called(ctx)
	agreements, _ := args.Get(0).([]model.Agreement)
	return agreements, args.Error(1)
}

func (m *RemoteAgreementStore) Create(ctx context.Context, agreement model.Agreement) (string, error) {
	args := m.Called(ctx, agreement)
	return args.String(0), args.Error(1)
}

func (m *RemoteAgreementStore) Update(ctx context.Context, agreement model.Agreement) error {
	args := m.Called(ctx, agreement)
	return args.Error(0)
}

func (m *RemoteAgreementStore) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RemoteAgreementStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
