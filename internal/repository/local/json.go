// Package local implements the stores of the local key-value tier: the
// agreement collection, notification flags, the access log, users and
// refresh tokens. Every value is one JSON document under a fixed key.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dtroode/pactpal-server/internal/model"
)

// errMalformed marks a stored value that does not decode into the expected shape.
var errMalformed = errors.New("malformed value")

// readJSON decodes the value under key into dst. It returns model.ErrNotFound
// for an absent key and errMalformed when the value does not decode.
func readJSON(ctx context.Context, kv model.KeyValueStore, key string, dst any) error {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", errMalformed, key, err)
	}
	return nil
}

func writeJSON(ctx context.Context, kv model.KeyValueStore, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
