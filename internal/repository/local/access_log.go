package local

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dtroode/pactpal-server/internal/model"
)

var _ model.AccessLogStore = (*AccessLogRepository)(nil)

// AccessLogRepository keeps the most recent model.MaxAccessLogEntries entries.
type AccessLogRepository struct {
	kv model.KeyValueStore
	mu sync.Mutex
}

func NewAccessLogRepository(kv model.KeyValueStore) *AccessLogRepository {
	return &AccessLogRepository{kv: kv}
}

func (r *AccessLogRepository) Append(ctx context.Context, entry model.AccessLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.List(ctx)
	if err != nil {
		// a malformed log is replaced rather than blocking new entries
		if !errors.Is(err, errMalformed) {
			return err
		}
		entries = nil
	}

	entries = append(entries, entry)
	if len(entries) > model.MaxAccessLogEntries {
		entries = entries[len(entries)-model.MaxAccessLogEntries:]
	}

	return writeJSON(ctx, r.kv, model.KeyAccessLog, entries)
}

// List returns the entries oldest first.
func (r *AccessLogRepository) List(ctx context.Context) ([]model.AccessLogEntry, error) {
	var entries []model.AccessLogEntry
	err := readJSON(ctx, r.kv, model.KeyAccessLog, &entries)
	if errors.Is(err, model.ErrNotFound) {
		return []model.AccessLogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read access log: %w", err)
	}
	if entries == nil {
		entries = []model.AccessLogEntry{}
	}
	return entries, nil
}

func (r *AccessLogRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return writeJSON(ctx, r.kv, model.KeyAccessLog, []model.AccessLogEntry{})
}
