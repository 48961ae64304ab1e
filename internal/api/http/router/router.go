package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/pactpal-server/internal/api/http/handler"
	"github.com/dtroode/pactpal-server/internal/api/http/middleware"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

// Router builds the HTTP JSON API.
type Router struct {
	authService      handler.AuthService
	agreementService handler.AgreementService
	resolver         middleware.CallerResolver
	contextManager   model.ContextManager
	publicBaseURL    string
	logger           *logger.Logger
}

func New(
	authService handler.AuthService,
	agreementService handler.AgreementService,
	resolver middleware.CallerResolver,
	contextManager model.ContextManager,
	publicBaseURL string,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:      authService,
		agreementService: agreementService,
		resolver:         resolver,
		contextManager:   contextManager,
		publicBaseURL:    publicBaseURL,
		logger:           logger,
	}
}

// Register returns the handler serving every route.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.resolver, r.contextManager, r.logger)
	authHandler := handler.NewAuth(r.authService, r.contextManager, r.logger)
	agreementHandler := handler.NewAgreement(r.agreementService, r.contextManager, r.publicBaseURL, r.logger)

	mux := chi.NewRouter()
	mux.Use(chiMiddleware.RequestID)
	mux.Use(logging.Handle)
	mux.Use(chiMiddleware.Recoverer)

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Route("/api/v1", func(api chi.Router) {
		api.Use(authenticate.Handle)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", authHandler.Signup)
			auth.Post("/login", authHandler.Login)
			auth.Post("/refresh", authHandler.Refresh)
			auth.Post("/logout", authHandler.Logout)
		})
		api.Get("/me", authHandler.Me)

		api.Route("/agreements", func(agreements chi.Router) {
			agreements.Post("/", agreementHandler.Create)
			agreements.Get("/", agreementHandler.List)
			agreements.Get("/{id}", agreementHandler.Get)
			agreements.Post("/{id}/respond", agreementHandler.Respond)
			agreements.Post("/{id}/delete", agreementHandler.Delete)
		})

		api.Get("/notifications/status", agreementHandler.NotificationStatus)
		api.Get("/notifications", agreementHandler.Notifications)

		api.Route("/admin", func(admin chi.Router) {
			admin.Get("/agreements", agreementHandler.AdminAgreements)
			admin.Delete("/agreements", agreementHandler.AdminClear)
			admin.Delete("/agreements/{id}", agreementHandler.AdminDelete)
			admin.Get("/logs", agreementHandler.AdminLogs)
			admin.Delete("/logs", agreementHandler.AdminClearLogs)
			admin.Get("/users", authHandler.Users)
			admin.Get("/stats", agreementHandler.AdminStats)
		})
	})

	return mux
}
