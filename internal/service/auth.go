package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

const (
	// AdminID is the id of the seeded admin account.
	AdminID = "admin-1"

	minPasswordLength = 6
)

// Session is the result of a successful signup, login or refresh.
type Session struct {
	AccessToken  string        `json:"token"`
	RefreshToken string        `json:"refreshToken"`
	User         model.Profile `json:"user"`
}

// Reloader refreshes the agreement snapshot for a user that just signed in.
type Reloader interface {
	ReloadForUser(ctx context.Context, userID string)
}

type Auth struct {
	users        model.UserStore
	tokenService *TokenService
	reloader     Reloader
	logger       *logger.Logger

	cost  int
	now   func() time.Time
	newID func() string
}

func NewAuth(users model.UserStore, tokenService *TokenService, reloader Reloader, logger *logger.Logger) *Auth {
	return &Auth{
		users:        users,
		tokenService: tokenService,
		reloader:     reloader,
		logger:       logger,
		cost:         bcrypt.DefaultCost,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (a *Auth) Signup(ctx context.Context, email, password, name string) (Session, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	a.logger.Debug("Auth service: signing up user", "email", email)

	if email == "" || name == "" {
		return Session{}, apperrors.NewErrInvalidArgument("Email and name are required")
	}
	if len(password) < minPasswordLength {
		return Session{}, apperrors.NewErrInvalidArgument(
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	_, err := a.users.GetByEmail(ctx, email)
	if err == nil {
		a.logger.Info("Auth service: user already exists", "email", email)
		return Session{}, apperrors.NewErrEmailTaken(email)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	user, err := a.create(ctx, model.User{
		ID:    a.newID(),
		Email: email,
		Name:  name,
		Role:  model.RoleUser,
	}, password)
	if errors.Is(err, model.ErrAlreadyExists) {
		return Session{}, apperrors.NewErrEmailTaken(email)
	}
	if err != nil {
		return Session{}, err
	}

	a.logger.Info("Auth service: user signed up",
		"user_id", user.ID,
		"email", email)
	return a.session(ctx, user)
}

func (a *Auth) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	a.logger.Debug("Auth service: logging in user", "email", email)

	user, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return Session{}, apperrors.NewErrInvalidCredentials()
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.logger.Info("Auth service: wrong password", "user_id", user.ID)
		return Session{}, apperrors.NewErrInvalidCredentials()
	}

	a.reloader.ReloadForUser(ctx, user.ID)

	a.logger.Info("Auth service: user logged in", "user_id", user.ID)
	return a.session(ctx, user)
}

// Refresh rotates a refresh token into a new session.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	access, refresh, err := a.tokenService.Refresh(ctx, refreshToken)
	if err != nil {
		a.logger.Info("Auth service: refresh failed", "error", err.Error())
		return Session{}, apperrors.Wrap(apperrors.KindUnauthenticated, "Session expired, please log in again", err)
	}

	user, err := a.userFromToken(ctx, access)
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: access, RefreshToken: refresh, User: user.Profile()}, nil
}

// Logout revokes the refresh token.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	if err := a.tokenService.RevokeByToken(ctx, refreshToken); err != nil && !errors.Is(err, model.ErrNotFound) {
		return apperrors.Wrap(apperrors.KindUnauthenticated, "Invalid refresh token", err)
	}
	return nil
}

// EnsureAdmin seeds the admin account when no user has the admin email.
func (a *Auth) EnsureAdmin(ctx context.Context, email, password, name string) error {
	_, err := a.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to get admin by email: %w", err)
	}

	_, err = a.create(ctx, model.User{
		ID:    AdminID,
		Email: email,
		Name:  name,
		Role:  model.RoleAdmin,
	}, password)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	a.logger.Info("Auth service: admin account seeded", "email", email)
	return nil
}

// Caller resolves an access token into the caller it identifies. The user
// record is read on every call, so role changes apply immediately.
func (a *Auth) Caller(ctx context.Context, token string) (model.Caller, error) {
	user, err := a.userFromToken(ctx, token)
	if err != nil {
		return model.Caller{}, err
	}
	return user.Caller(), nil
}

func (a *Auth) Profile(ctx context.Context, caller model.Caller) (model.Profile, error) {
	if !caller.Authenticated() {
		return model.Profile{}, apperrors.NewErrUnauthenticated()
	}
	user, err := a.users.GetByID(ctx, caller.ID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Profile{}, apperrors.NewErrUserNotFound(caller.ID)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user.Profile(), nil
}

// ListUsers returns every user profile. Admin only.
func (a *Auth) ListUsers(ctx context.Context, caller model.Caller) ([]model.Profile, error) {
	if !caller.Authenticated() {
		return nil, apperrors.NewErrUnauthenticated()
	}
	if !caller.IsAdmin() {
		return nil, apperrors.NewErrUnauthorized("Admin access required")
	}

	users, err := a.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	profiles := make([]model.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

func (a *Auth) create(ctx context.Context, user model.User, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.CreatedAt = a.now().UTC()

	created, err := a.users.Create(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (a *Auth) userFromToken(ctx context.Context, token string) (model.User, error) {
	userID, err := a.tokenService.GetUserID(token)
	if err != nil {
		return model.User{}, apperrors.Wrap(apperrors.KindUnauthenticated, "Invalid or expired token", err)
	}

	user, err := a.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apperrors.NewErrUnauthenticated()
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (a *Auth) session(ctx context.Context, user model.User) (Session, error) {
	access, refresh, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return Session{AccessToken: access, RefreshToken: refresh, User: user.Profile()}, nil
}
