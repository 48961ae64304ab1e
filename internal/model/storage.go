package model

import "context"

// Keys of the local key-value tier.
const (
	KeyAgreements    = "friendly_agreements"
	KeyNotifications = "friendly_agreements_notifications"
	KeyAccessLog     = "friendly_agreements_access_logs"
	KeyUsers         = "pact_pal_users"
	KeyRefreshTokens = "pact_pal_refresh_tokens"
)

// KeyValueStore is the durable local tier. Values are opaque bytes and every
// Put replaces the whole value. Get returns ErrNotFound for an absent key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
