package router

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	grpcContext "github.com/dtroode/pactpal-server/internal/api/grpc/context"
	"github.com/dtroode/pactpal-server/internal/api/grpc/handler"
	"github.com/dtroode/pactpal-server/internal/api/grpc/middleware"
	"github.com/dtroode/pactpal-server/internal/logger"
)

// Router represents the gRPC router of the PactPal services.
type Router struct {
	authService      handler.AuthService
	agreementService handler.AgreementService
	resolver         middleware.CallerResolver
	contextManager   *grpcContext.Manager
	health           *health.Server
	logger           *logger.Logger
}

func New(
	authService handler.AuthService,
	agreementService handler.AgreementService,
	resolver middleware.CallerResolver,
	contextManager *grpcContext.Manager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:      authService,
		agreementService: agreementService,
		resolver:         resolver,
		contextManager:   contextManager,
		health:           health.NewServer(),
		logger:           logger,
	}
}

// Health returns the health server registered by Register.
func (r *Router) Health() *health.Server {
	return r.health
}

// authSkip matches the calls that go through authentication. Health checks
// and reflection never carry credentials.
func authSkip(_ context.Context, c interceptors.CallMeta) bool {
	return !strings.HasPrefix(c.FullMethod(), "/grpc.health.v1.Health/") &&
		!strings.HasPrefix(c.FullMethod(), "/grpc.reflection.")
}

func (r *Router) handlePanic(p any) error {
	r.logger.Error("gRPC handler panicked", "panic", p)
	return status.Error(codes.Internal, "internal server error")
}

// Register registers all gRPC services and middleware.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.resolver, r.contextManager, r.logger)
	recoveryOpt := recovery.WithRecoveryHandler(r.handlePanic)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recoveryOpt),
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authSkip),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpt),
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authSkip),
			),
		),
	)

	handler.RegisterAuthServer(s, handler.NewAuth(r.authService, r.logger))
	handler.RegisterAgreementsServer(s, handler.NewAgreement(r.agreementService, r.contextManager, r.logger))
	healthpb.RegisterHealthServer(s, r.health)
	reflection.Register(s)

	return s
}
