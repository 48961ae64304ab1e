package handler

import (
	"context"

	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/service"
)

// AuthService defines the session operations exposed over gRPC.
type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Refresh(ctx context.Context, refreshToken string) (service.Session, error)
}

// Auth handles pactpal.Auth.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

var _ AuthServer = (*Auth)(nil)

func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{authService: authService, logger: logger}
}

func (h *Auth) Signup(ctx context.Context, req *SignupRequest) (*service.Session, error) {
	session, err := h.authService.Signup(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, handleError(h.logger, "Signup", err)
	}
	return &session, nil
}

func (h *Auth) Login(ctx context.Context, req *LoginRequest) (*service.Session, error) {
	session, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, handleError(h.logger, "Login", err)
	}
	return &session, nil
}

func (h *Auth) Refresh(ctx context.Context, req *RefreshRequest) (*service.Session, error) {
	session, err := h.authService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, handleError(h.logger, "Refresh", err)
	}
	return &session, nil
}
