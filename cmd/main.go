package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	grpcContext "github.com/dtroode/pactpal-server/internal/api/grpc/context"
	grpcHandler "github.com/dtroode/pactpal-server/internal/api/grpc/handler"
	"github.com/dtroode/pactpal-server/internal/api/grpc/health"
	grpcRouter "github.com/dtroode/pactpal-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/pactpal-server/internal/api/grpc/server"
	httpContext "github.com/dtroode/pactpal-server/internal/api/http/context"
	httpRouter "github.com/dtroode/pactpal-server/internal/api/http/router"
	httpServer "github.com/dtroode/pactpal-server/internal/api/http/server"
	"github.com/dtroode/pactpal-server/internal/app"
	"github.com/dtroode/pactpal-server/internal/config"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/server"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel).With("instance_id", cfg.InstanceID)

	logAppVersion()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", "error", err)
	}
	defer a.Close()

	httpSrv := httpServer.NewHTTPServer(
		httpRouter.New(a.Auth, a.Agreements, a.Auth, httpContext.NewManager(), cfg.PublicBaseURL, logger).Register(),
		fmt.Sprintf(":%s", cfg.HTTP.Port),
	)

	router := grpcRouter.New(a.Auth, a.Agreements, a.Auth, grpcContext.NewManager(), logger)
	grpcSrv := grpcServer.NewGRPCServer(router.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))
	reporter := health.NewReporter(router.Health(), grpcHandler.AgreementsServiceName, a.Mirror, cfg.RefreshInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Run(gctx) })
	g.Go(func() error { return reporter.Run(gctx) })
	g.Go(func() error { return start(logger, httpSrv, server.ForListener(cfg.HTTP)) })
	g.Go(func() error { return start(logger, grpcSrv, server.ForListener(cfg.GRPC)) })

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, s := range []model.Server{httpSrv, grpcSrv} {
			if err := s.Stop(shutdownCtx); err != nil {
				logger.Error("error during server shutdown", "error", err, "address", s.Address())
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped with error", "error", err)
	}
	logger.Info("shutdown complete")
}

func start(logger *logger.Logger, s model.Server, sl model.SecurityLayer) error {
	logger.Info("Starting server on", "address", s.Address())
	if err := s.Start(sl); err != nil {
		return fmt.Errorf("server %s: %w", s.Address(), err)
	}
	return nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
