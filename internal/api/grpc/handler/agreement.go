package handler

import (
	"context"

	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/service"
)

// AgreementService defines the lifecycle operations exposed over gRPC.
type AgreementService interface {
	Create(ctx context.Context, caller model.Caller, message string) (service.Outcome, error)
	Respond(ctx context.Context, caller model.Caller, id string, accept bool) (service.Outcome, error)
	RequestDelete(ctx context.Context, caller model.Caller, id string) (service.Outcome, error)
	Get(ctx context.Context, caller model.Caller, id string) (model.Agreement, model.Permissions, error)
	List(ctx context.Context, caller model.Caller, tab, query, status string) ([]model.Agreement, error)
	HasUnread(ctx context.Context, caller model.Caller) (bool, error)
	Feed(ctx context.Context, caller model.Caller) (service.Feed, error)
}

// Agreement handles pactpal.Agreements. The caller comes from the context
// set by the authenticate interceptor; a missing caller is anonymous.
type Agreement struct {
	agreementService AgreementService
	contextManager   model.ContextManager
	logger           *logger.Logger
}

var _ AgreementsServer = (*Agreement)(nil)

func NewAgreement(agreementService AgreementService, contextManager model.ContextManager, logger *logger.Logger) *Agreement {
	return &Agreement{
		agreementService: agreementService,
		contextManager:   contextManager,
		logger:           logger,
	}
}

func (h *Agreement) caller(ctx context.Context) model.Caller {
	caller, _ := h.contextManager.GetCallerFromContext(ctx)
	return caller
}

func (h *Agreement) Create(ctx context.Context, req *CreateRequest) (*service.Outcome, error) {
	out, err := h.agreementService.Create(ctx, h.caller(ctx), req.Message)
	if err != nil {
		return nil, handleError(h.logger, "Create", err)
	}
	return &out, nil
}

func (h *Agreement) Get(ctx context.Context, req *AgreementRequest) (*GetResponse, error) {
	a, perms, err := h.agreementService.Get(ctx, h.caller(ctx), req.ID)
	if err != nil {
		return nil, handleError(h.logger, "Get", err)
	}
	return &GetResponse{Agreement: a, Permissions: perms}, nil
}

func (h *Agreement) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	agreements, err := h.agreementService.List(ctx, h.caller(ctx), req.Tab, req.Query, req.Status)
	if err != nil {
		return nil, handleError(h.logger, "List", err)
	}
	return &ListResponse{Agreements: agreements}, nil
}

func (h *Agreement) Respond(ctx context.Context, req *RespondRequest) (*service.Outcome, error) {
	out, err := h.agreementService.Respond(ctx, h.caller(ctx), req.ID, req.Accept)
	if err != nil {
		return nil, handleError(h.logger, "Respond", err)
	}
	return &out, nil
}

func (h *Agreement) RequestDelete(ctx context.Context, req *AgreementRequest) (*service.Outcome, error) {
	out, err := h.agreementService.RequestDelete(ctx, h.caller(ctx), req.ID)
	if err != nil {
		return nil, handleError(h.logger, "RequestDelete", err)
	}
	return &out, nil
}

func (h *Agreement) NotificationStatus(ctx context.Context, _ *Empty) (*StatusResponse, error) {
	unread, err := h.agreementService.HasUnread(ctx, h.caller(ctx))
	if err != nil {
		return nil, handleError(h.logger, "NotificationStatus", err)
	}
	return &StatusResponse{Unread: unread}, nil
}

func (h *Agreement) Feed(ctx context.Context, _ *Empty) (*service.Feed, error) {
	feed, err := h.agreementService.Feed(ctx, h.caller(ctx))
	if err != nil {
		return nil, handleError(h.logger, "Feed", err)
	}
	return &feed, nil
}
