// Package app wires the stores, the event plumbing and the services of one
// PactPal process.
package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dtroode/pactpal-server/internal/config"
	"github.com/dtroode/pactpal-server/internal/events"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/repository/local"
	"github.com/dtroode/pactpal-server/internal/repository/memory"
	"github.com/dtroode/pactpal-server/internal/repository/postgres"
	"github.com/dtroode/pactpal-server/internal/service"
	"github.com/dtroode/pactpal-server/internal/storage"
	"github.com/dtroode/pactpal-server/internal/token"
)

type App struct {
	Config *config.Config
	Logger *logger.Logger

	Bus      *events.Bus
	Backend  storage.Backend
	DB       *postgres.Connection
	Notifier *postgres.Notifier
	Remote   model.RemoteAgreementStore

	Mirror     *service.Mirror
	Repository *service.AgreementRepository
	Agreements *service.Agreements
	Auth       *service.Auth
	Tokens     *service.TokenService
}

// New opens every store named by cfg, seeds the admin account and loads the
// first agreement snapshot.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		Bus:    events.NewBus(),
	}

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}
	a.Backend = backend

	var broadcaster model.Broadcaster = events.NoopBroadcaster{}
	if cfg.Database.DSN != "" {
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to connect to remote database: %w", err)
		}
		a.DB = db
		a.Notifier = postgres.NewNotifier(db, cfg.InstanceID, logger)
		a.Remote = postgres.NewAgreementRepository(db)
		broadcaster = a.Notifier
	} else {
		logger.Warn("DATABASE_DSN is empty, agreements are shared through an in-memory table")
		a.Remote = memory.NewAgreementRepository()
	}

	agreementStorage := local.NewAgreementStorage(backend, a.Bus, broadcaster, cfg.InstanceID, logger)
	notifications := service.NewNotifications(
		local.NewNotificationRepository(backend, broadcaster, cfg.InstanceID, logger), logger)
	accessLog := service.NewAccessLog(local.NewAccessLogRepository(backend), logger)
	users := local.NewUserRepository(backend)

	a.Mirror = service.NewMirror(a.Remote, agreementStorage, logger)
	a.Repository = service.NewAgreementRepository(agreementStorage, a.Mirror, logger)
	a.Agreements = service.NewAgreements(a.Repository, agreementStorage, a.Mirror, notifications, accessLog, users, logger)

	jwt := token.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	a.Tokens = service.NewTokenService(jwt, local.NewRefreshTokenRepository(backend), jwt.RefreshTTL(), logger)
	a.Auth = service.NewAuth(users, a.Tokens, a.Repository, logger)

	if err := a.Auth.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Repository.Reload(ctx)

	return a, nil
}

// Run keeps the snapshot in sync with the other processes until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Repository.Watch(ctx, a.Bus, a.Config.RefreshInterval)
	})
	if a.Notifier != nil {
		g.Go(func() error {
			return a.Notifier.Listen(ctx, a.Bus)
		})
	}

	return g.Wait()
}

func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Backend != nil {
		errs = append(errs, a.Backend.Close())
	}
	return errors.Join(errs...)
}
