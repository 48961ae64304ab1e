package local

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dtroode/pactpal-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	kv  model.KeyValueStore
	now func() time.Time
	mu  sync.Mutex
}

func NewRefreshTokenRepository(kv model.KeyValueStore) *RefreshTokenRepository {
	return &RefreshTokenRepository{kv: kv, now: time.Now}
}

// Create stores token and drops tokens that have already expired.
func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens, err := r.list(ctx)
	if err != nil {
		return err
	}

	now := r.now()
	kept := tokens[:0]
	for _, t := range tokens {
		if t.ExpiresAt.After(now) {
			kept = append(kept, t)
		}
	}

	return writeJSON(ctx, r.kv, model.KeyRefreshTokens, append(kept, token))
}

func (r *RefreshTokenRepository) GetByJTI(ctx context.Context, jti string) (model.RefreshToken, error) {
	tokens, err := r.list(ctx)
	if err != nil {
		return model.RefreshToken{}, err
	}
	for _, t := range tokens {
		if t.JTI == jti {
			return t, nil
		}
	}
	return model.RefreshToken{}, model.ErrNotFound
}

func (r *RefreshTokenRepository) RevokeByJTI(ctx context.Context, jti string) error {
	return r.revoke(ctx, func(t model.RefreshToken) bool { return t.JTI == jti }, true)
}

func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	return r.revoke(ctx, func(t model.RefreshToken) bool { return t.UserID == userID }, false)
}

func (r *RefreshTokenRepository) revoke(ctx context.Context, match func(model.RefreshToken) bool, mustMatch bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens, err := r.list(ctx)
	if err != nil {
		return err
	}

	now := r.now()
	found, changed := false, false
	for i := range tokens {
		if !match(tokens[i]) {
			continue
		}
		found = true
		if tokens[i].RevokedAt == nil {
			tokens[i].RevokedAt = &now
			changed = true
		}
	}
	if !found && mustMatch {
		return model.ErrNotFound
	}
	if !changed {
		return nil
	}

	return writeJSON(ctx, r.kv, model.KeyRefreshTokens, tokens)
}

func (r *RefreshTokenRepository) list(ctx context.Context) ([]model.RefreshToken, error) {
	var tokens []model.RefreshToken
	err := readJSON(ctx, r.kv, model.KeyRefreshTokens, &tokens)
	if errors.Is(err, model.ErrNotFound) {
		return []model.RefreshToken{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh tokens: %w", err)
	}
	return tokens, nil
}
