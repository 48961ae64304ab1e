package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

// CallerResolver resolves the caller identified by an access token.
type CallerResolver interface {
	Caller(ctx context.Context, token string) (model.Caller, error)
}

// Authenticate resolves optional bearer tokens into the request caller.
// Requests without a token pass through as anonymous.
type Authenticate struct {
	resolver       CallerResolver
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(resolver CallerResolver, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{resolver: resolver, contextManager: contextManager, logger: logger}
}

func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r.Header.Get("Authorization"))
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		caller, err := m.resolver.Caller(r.Context(), tokenString)
		if err != nil {
			m.logger.Debug("HTTP authentication failed", "path", r.URL.Path, "error", err.Error())
			unauthenticated(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetCallerToContext(r.Context(), caller)))
	})
}

func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthenticated(w http.ResponseWriter, r *http.Request, err error) {
	message := "Invalid or expired token"
	if appErr, ok := apperrors.As(err); ok && appErr.Kind == apperrors.KindUnauthenticated {
		message = appErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"request_id": chiMiddleware.GetReqID(r.Context()),
		"error": map[string]string{
			"code":    string(apperrors.KindUnauthenticated),
			"message": message,
		},
	})
}
