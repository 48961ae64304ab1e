package local

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dtroode/pactpal-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	kv model.KeyValueStore
	mu sync.Mutex
}

func NewUserRepository(kv model.KeyValueStore) *UserRepository {
	return &UserRepository{kv: kv}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.List(ctx)
	if err != nil {
		return model.User{}, err
	}
	if slices.ContainsFunc(users, func(u model.User) bool {
		return u.ID == user.ID || strings.EqualFold(u.Email, user.Email)
	}) {
		return model.User{}, model.ErrAlreadyExists
	}

	users = append(users, user)
	if err := writeJSON(ctx, r.kv, model.KeyUsers, users); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := readJSON(ctx, r.kv, model.KeyUsers, &users)
	if errors.Is(err, model.ErrNotFound) {
		return []model.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}
