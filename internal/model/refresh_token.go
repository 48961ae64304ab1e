package model

import (
	"context"
	"time"
)

type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	GetByJTI(ctx context.Context, jti string) (RefreshToken, error)
	RevokeByJTI(ctx context.Context, jti string) error
	RevokeAllByUser(ctx context.Context, userID string) error
}

type RefreshToken struct {
	JTI            string     `json:"jti"`
	UserID         string     `json:"userId"`
	TokenHash      []byte     `json:"tokenHash"`
	IssuedAt       time.Time  `json:"issuedAt"`
	ExpiresAt      time.Time  `json:"expiresAt"`
	RevokedAt      *time.Time `json:"revokedAt,omitempty"`
	RotatedFromJTI string     `json:"rotatedFromJti,omitempty"`
}
