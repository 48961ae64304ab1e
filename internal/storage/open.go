// Package storage selects and opens the local key-value tier.
package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/pactpal-server/internal/config"
	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/storage/bolt"
	"github.com/dtroode/pactpal-server/internal/storage/memory"
	minioStorage "github.com/dtroode/pactpal-server/internal/storage/minio"
	"github.com/dtroode/pactpal-server/internal/storage/sqlite"
)

// Backend is an open key-value tier.
type Backend interface {
	model.KeyValueStore
	Close() error
}

// Open opens the backend named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memory.NewKV(), nil
	case config.DriverBolt:
		kv, err := bolt.Open(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.DriverSQLite:
		kv, err := sqlite.Open(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.DriverMinio:
		client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		kv, err := minioStorage.NewClient(ctx, client, cfg.Minio.Bucket)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
