package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/service"
)

// AuthService defines signup, login and session operations.
type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Refresh(ctx context.Context, refreshToken string) (service.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, caller model.Caller) (model.Profile, error)
	ListUsers(ctx context.Context, caller model.Caller) ([]model.Profile, error)
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type sessionResponse struct {
	RequestID string `json:"request_id"`
	service.Session
}

func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := readJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	session, err := h.authService.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{RequestID: requestID(r), Session: session})
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{RequestID: requestID(r), Session: session})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := readJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	session, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{RequestID: requestID(r), Session: session})
}

func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := readJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := h.contextManager.GetCallerFromContext(r.Context())

	profile, err := h.authService.Profile(r.Context(), caller)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request_id": requestID(r), "user": profile})
}

// Users lists every user profile for admins.
func (h *Auth) Users(w http.ResponseWriter, r *http.Request) {
	caller, _ := h.contextManager.GetCallerFromContext(r.Context())

	users, err := h.authService.ListUsers(r.Context(), caller)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request_id": requestID(r), "users": users})
}
