package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/pactpal-server/internal/config"
	"github.com/dtroode/pactpal-server/internal/model"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		driver string
	}{
		{name: "memory", driver: config.DriverMemory},
		{name: "bolt", driver: config.DriverBolt},
		{name: "sqlite", driver: config.DriverSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Storage: config.Storage{
				Driver: tt.driver,
				Path:   filepath.Join(t.TempDir(), "state.db"),
			}}

			backend, err := Open(ctx, cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = backend.Close() })

			require.NoError(t, backend.Put(ctx, model.KeyAgreements, []byte(`[]`)))
			got, err := backend.Get(ctx, model.KeyAgreements)
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.Storage{Driver: "redis"}}

	backend, err := Open(context.Background(), cfg)
	assert.Nil(t, backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}
