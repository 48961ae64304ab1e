// Package bolt provides a key-value tier backed by an embedded bbolt file.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dtroode/pactpal-server/internal/model"
)

var bucket = []byte("pactpal")

var _ model.KeyValueStore = (*KV)(nil)

type KV struct {
	store *bolt.DB
}

// Open opens the bolt database defined by path and creates the bucket.
func Open(path string) (*KV, error) {
	store, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = store.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &KV{store: store}, nil
}

func (s *KV) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.store.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(key))
		if data == nil {
			return model.ErrNotFound
		}
		// data is only valid inside the transaction
		value = slices.Clone(data)
		return nil
	})
	if errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, nil
}

func (s *KV) Put(_ context.Context, key string, value []byte) error {
	err := s.store.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (s *KV) Delete(_ context.Context, key string) error {
	err := s.store.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *KV) Close() error {
	return s.store.Close()
}
