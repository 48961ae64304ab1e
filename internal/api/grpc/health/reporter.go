// Package health reports the serving status of the agreement service from
// periodic remote pings.
package health

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/pactpal-server/internal/logger"
)

const pingTimeout = 3 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// Reporter flips the status of service between SERVING and NOT_SERVING.
type Reporter struct {
	server   *health.Server
	service  string
	pinger   Pinger
	interval time.Duration
	logger   *logger.Logger
}

func NewReporter(server *health.Server, service string, pinger Pinger, interval time.Duration, logger *logger.Logger) *Reporter {
	return &Reporter{
		server:   server,
		service:  service,
		pinger:   pinger,
		interval: interval,
		logger:   logger,
	}
}

// Run checks once immediately and then every interval until ctx is done.
// On return every service is reported NOT_SERVING.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			r.server.Shutdown()
			return nil
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}

// Check pings the remote once and publishes the result.
func (r *Reporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := r.pinger.Ping(pingCtx); err != nil {
		r.logger.Warn("Health reporter: remote ping failed", "service", r.service, "error", err.Error())
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	r.server.SetServingStatus(r.service, status)
	return status
}
