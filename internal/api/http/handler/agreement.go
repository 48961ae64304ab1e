package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/service"
)

// AgreementService defines the agreement lifecycle operations.
type AgreementService interface {
	Create(ctx context.Context, caller model.Caller, message string) (service.Outcome, error)
	Respond(ctx context.Context, caller model.Caller, id string, accept bool) (service.Outcome, error)
	RequestDelete(ctx context.Context, caller model.Caller, id string) (service.Outcome, error)
	AdminDelete(ctx context.Context, caller model.Caller, id string) (service.Outcome, error)
	Get(ctx context.Context, caller model.Caller, id string) (model.Agreement, model.Permissions, error)
	List(ctx context.Context, caller model.Caller, tab, query, status string) ([]model.Agreement, error)
	HasUnread(ctx context.Context, caller model.Caller) (bool, error)
	Feed(ctx context.Context, caller model.Caller) (service.Feed, error)

	AllAgreements(ctx context.Context, caller model.Caller) ([]model.Agreement, error)
	ClearAll(ctx context.Context, caller model.Caller) (service.Outcome, error)
	Stats(ctx context.Context, caller model.Caller) (service.Stats, error)
	Logs(ctx context.Context, caller model.Caller) ([]model.AccessLogEntry, error)
	ClearLogs(ctx context.Context, caller model.Caller) error
}

// Agreement handles HTTP endpoints for agreements and notifications.
type Agreement struct {
	agreementService AgreementService
	contextManager   model.ContextManager
	publicBaseURL    string
	logger           *logger.Logger
}

func NewAgreement(agreementService AgreementService, contextManager model.ContextManager, publicBaseURL string, logger *logger.Logger) *Agreement {
	return &Agreement{
		agreementService: agreementService,
		contextManager:   contextManager,
		publicBaseURL:    strings.TrimRight(publicBaseURL, "/"),
		logger:           logger,
	}
}

type outcomeResponse struct {
	RequestID string `json:"request_id"`
	service.Outcome
	ShareURL string `json:"share_url,omitempty"`
}

func (h *Agreement) caller(r *http.Request) model.Caller {
	caller, _ := h.contextManager.GetCallerFromContext(r.Context())
	return caller
}

// shareURL is the link a creator sends to the other party.
func (h *Agreement) shareURL(id string) string {
	return h.publicBaseURL + "/agreements/" + id
}

func (h *Agreement) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := readJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	out, err := h.agreementService.Create(r.Context(), h.caller(r), req.Message)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	resp := outcomeResponse{RequestID: requestID(r), Outcome: out}
	if out.Agreement != nil {
		resp.ShareURL = h.shareURL(out.Agreement.ID)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Agreement) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	agreements, err := h.agreementService.List(r.Context(), h.caller(r), q.Get("tab"), q.Get("q"), q.Get("status"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request_id": requestID(r), "agreements": agreements})
}

func (h *Agreement) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, perms, err := h.agreementService.Get(r.Context(), h.caller(r), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"request_id":  requestID(r),
		"agreement":   a,
		"permissions": perms,
		"share_url":   h.shareURL(a.ID),
	})
}

func (h *Agreement) Respond(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Accept *bool `json:"accept"`
	}
	if err := readJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if req.Accept == nil {
		handleError(w, r, h.logger, apperrors.NewErrInvalidArgument("accept is required"))
		return
	}

	out, err := h.agreementService.Respond(r.Context(), h.caller(r), chi.URLParam(r, "id"), *req.Accept)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeResponse{RequestID: requestID(r), Outcome: out})
}

func (h *Agreement) Delete(w http.ResponseWriter, r *http.Request) {
	out, err := h.agreementService.RequestDelete(r.Context(), h.caller(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeResponse{RequestID: requestID(r), Outcome: out})
}

func (h *Agreement) NotificationStatus(w http.ResponseWriter, r *http.Request) {
	unread, err := h.agreementService.HasUnread(r.Context(), h.caller(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request_id": requestID(r), "unread": unread})
}

// Notifications returns the feed and marks it as read.
func (h *Agreement) Notifications(w http.ResponseWriter, r *http.Request) {
	feed, err := h.agreementService.Feed(r.Context(), h.caller(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		RequestID string `json:"request_id"`
		service.Feed
	}{RequestID: requestID(r), Feed: feed})
}
