package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
)

// Storage drivers of the local tier.
const (
	DriverMemory = "memory"
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMinio  = "minio"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel        int           `env:"LOG_LEVEL" envDefault:"0"`
	InstanceID      string        `env:"INSTANCE_ID"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"30s"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	HTTP            Listener      `envPrefix:"HTTP_"`
	GRPC            Listener      `envPrefix:"GRPC_"`
	Database        Database      `envPrefix:"DATABASE_"`
	JWT             JWT           `envPrefix:"JWT_"`
	Admin           Admin         `envPrefix:"ADMIN_"`
	Storage         Storage       `envPrefix:"STORAGE_"`
	Minio           Minio         `envPrefix:"MINIO_"`
}

// Listener contains parameters of one network server.
type Listener struct {
	Port               string `env:"PORT"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// Database contains remote table connection parameters. An empty DSN runs
// the service against an in-memory table.
type Database struct {
	DSN string `env:"DSN"`
}

// JWT contains JWT-related parameters.
type JWT struct {
	Secret     string        `env:"SECRET" envDefault:"devsecret"`
	AccessTTL  time.Duration `env:"TTL" envDefault:"24h"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"720h"`
}

// Admin contains the seeded admin account.
type Admin struct {
	Email    string `env:"EMAIL" envDefault:"admin@pactpal.com"`
	Password string `env:"PASSWORD" envDefault:"admin123"`
	Name     string `env:"NAME" envDefault:"PactPal Admin"`
}

// Storage selects the local key-value tier.
type Storage struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
	Path   string `env:"PATH" envDefault:"pactpal.db"`
}

// Minio contains object storage parameters.
type Minio struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"pactpal-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"pactpal-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"pactpal-state"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = "8080"
	}
	if cfg.GRPC.Port == "" {
		cfg.GRPC.Port = "50051"
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverBolt, DriverSQLite, DriverMinio:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.RefreshInterval)
	}
	return nil
}
