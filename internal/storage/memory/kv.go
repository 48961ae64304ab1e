// Package memory provides an in-process key-value tier.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/dtroode/pactpal-server/internal/model"
)

var _ model.KeyValueStore = (*KV)(nil)

// KV is a mutex-guarded map. Values are copied on the way in and out.
type KV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewKV() *KV {
	return &KV{values: make(map[string][]byte)}
}

func (s *KV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return slices.Clone(value), nil
}

func (s *KV) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = slices.Clone(value)
	return nil
}

func (s *KV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *KV) Close() error {
	return nil
}
