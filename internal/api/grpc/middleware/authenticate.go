package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcContext "github.com/dtroode/pactpal-server/internal/api/grpc/context"
	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

// CallerResolver resolves the caller identified by an access token.
type CallerResolver interface {
	Caller(ctx context.Context, token string) (model.Caller, error)
}

// Authenticate validates optional bearer tokens and injects the caller into
// the context. Calls without a token continue as anonymous.
type Authenticate struct {
	resolver       CallerResolver
	contextManager *grpcContext.Manager
	logger         *logger.Logger
}

func NewAuthenticate(resolver CallerResolver, contextManager *grpcContext.Manager, logger *logger.Logger) *Authenticate {
	return &Authenticate{resolver: resolver, contextManager: contextManager, logger: logger}
}

// AuthFunc parses the authorization header and returns a context carrying
// the caller.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	ctx = m.contextManager.Strip(ctx)

	var tokenString string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if authHeaders := md.Get("authorization"); len(authHeaders) > 0 {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeaders[0], "Bearer "))
		}
	}
	if tokenString == "" {
		return ctx, nil
	}

	caller, err := m.resolver.Caller(ctx, tokenString)
	if err != nil {
		m.logger.Debug("gRPC authentication failed", "error", err.Error())
		message := "Invalid or expired token"
		if appErr, ok := apperrors.As(err); ok && appErr.Kind == apperrors.KindUnauthenticated {
			message = appErr.Message
		}
		return nil, status.Error(codes.Unauthenticated, message)
	}

	return m.contextManager.SetCallerToContext(ctx, caller), nil
}
