package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/model"
)

// Warnings of degraded durability.
const (
	WarningLocalWrite  = "local storage could not be updated"
	WarningRemoteWrite = "remote copy could not be updated"
)

// Tabs of the agreement list.
const (
	TabAll      = "all"
	TabSent     = "sent"
	TabReceived = "received"
)

// Outcome is the result of a lifecycle operation.
type Outcome struct {
	// Agreement is nil when the agreement was removed.
	Agreement        *model.Agreement `json:"agreement,omitempty"`
	Removed          bool             `json:"removed"`
	AlreadyRequested bool             `json:"alreadyRequested"`
	Message          string           `json:"message"`
	Warnings         []string         `json:"warnings,omitempty"`
}

// Agreements runs the agreement lifecycle: creation, responses and the
// delete consensus.
type Agreements struct {
	repo          *AgreementRepository
	local         model.LocalAgreementStore
	mirror        *Mirror
	notifications *Notifications
	accessLog     *AccessLog
	users         model.UserStore
	logger        *logger.Logger

	now   func() time.Time
	newID func() string
}

func NewAgreements(
	repo *AgreementRepository,
	local model.LocalAgreementStore,
	mirror *Mirror,
	notifications *Notifications,
	accessLog *AccessLog,
	users model.UserStore,
	logger *logger.Logger,
) *Agreements {
	return &Agreements{
		repo:          repo,
		local:         local,
		mirror:        mirror,
		notifications: notifications,
		accessLog:     accessLog,
		users:         users,
		logger:        logger,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// Create stores a new pending agreement authored by caller. The remote
// insert must succeed before anything is written locally.
func (s *Agreements) Create(ctx context.Context, caller model.Caller, message string) (Outcome, error) {
	s.logger.Debug("Agreement service: creating agreement", "user_id", caller.ID)

	if !caller.Authenticated() {
		return Outcome{}, s.reject(ctx, caller, model.ActionCreate, "", apperrors.NewErrUnauthenticated())
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return Outcome{}, s.reject(ctx, caller, model.ActionCreate, "", apperrors.NewErrInvalidArgument("Agreement message is required"))
	}

	creatorName := caller.Name
	if creatorName == "" {
		creatorName = model.DefaultCreatorName
	}
	a := model.Agreement{
		ID:                s.newID(),
		Message:           message,
		CreatedAt:         s.now().UTC(),
		CreatorID:         caller.ID,
		CreatorName:       creatorName,
		Status:            model.StatusPending,
		DeleteRequestedBy: []string{},
	}

	var out Outcome
	err := s.repo.Serialize(func() error {
		id, err := s.mirror.Create(ctx, a)
		if err != nil {
			var appErr *apperrors.Error
			if !errors.As(err, &appErr) {
				appErr = apperrors.NewErrRemoteFailure(err)
			}
			return s.reject(ctx, caller, model.ActionCreate, a.ID, appErr)
		}
		a.ID = id

		s.repo.Put(a)
		var warnings []string
		if !s.local.Upsert(ctx, a) {
			warnings = append(warnings, WarningLocalWrite)
		}
		s.warn(a.ID, warnings)

		s.audit(ctx, caller, model.ActionCreate, a.ID, "")
		s.logger.Info("Agreement service: agreement created",
			"agreement_id", a.ID,
			"user_id", caller.ID)

		out = Outcome{Agreement: &a, Message: "Agreement created!", Warnings: warnings}
		return nil
	})
	return out, err
}

// Respond accepts or declines a pending agreement. The first eligible
// responder claims the recipient slot.
func (s *Agreements) Respond(ctx context.Context, caller model.Caller, id string, accept bool) (Outcome, error) {
	s.logger.Debug("Agreement service: responding to agreement",
		"agreement_id", id,
		"user_id", caller.ID,
		"accept", accept)

	if !caller.Authenticated() {
		return Outcome{}, s.reject(ctx, caller, model.ActionRespond, id, apperrors.NewErrUnauthenticated())
	}

	var out Outcome
	err := s.repo.Serialize(func() error {
		a, ok := s.repo.Fresh(ctx, id)
		if !ok {
			return s.reject(ctx, caller, model.ActionRespond, id, apperrors.NewErrAgreementNotFound(id))
		}
		if a.CreatorID == caller.ID && !caller.IsAdmin() {
			return s.reject(ctx, caller, model.ActionRespond, id, apperrors.NewErrUnauthorized("You cannot respond to your own agreement"))
		}
		if a.RecipientID != "" && a.RecipientID != caller.ID && !caller.IsAdmin() {
			return s.reject(ctx, caller, model.ActionRespond, id, apperrors.NewErrUnauthorized("This agreement was sent to someone else"))
		}
		if a.Status != model.StatusPending {
			return s.reject(ctx, caller, model.ActionRespond, id, apperrors.NewErrInvalidState("This agreement has already been responded to"))
		}

		a.RecipientID = caller.ID
		a.RecipientName = caller.Name
		a.Status = model.StatusDeclined
		if accept {
			a.Status = model.StatusAccepted
		}

		warnings, err := s.persist(ctx, a)
		if err != nil {
			return s.reject(ctx, caller, model.ActionRespond, id, apperrors.NewErrAgreementNotFound(id))
		}
		if a.CreatorID != caller.ID {
			s.notifications.MarkUnread(ctx, a.CreatorID)
		}

		s.audit(ctx, caller, model.ActionRespond, id, string(a.Status))
		s.logger.Info("Agreement service: agreement responded",
			"agreement_id", id,
			"user_id", caller.ID,
			"status", a.Status)

		out = Outcome{Agreement: &a, Message: "Agreement " + string(a.Status) + "!", Warnings: warnings}
		return nil
	})
	return out, err
}

// RequestDelete records the caller's wish to delete an agreement. Pending
// agreements are removed at once by their creator; accepted ones once both
// parties asked. Admin requests delete immediately.
func (s *Agreements) RequestDelete(ctx context.Context, caller model.Caller, id string) (Outcome, error) {
	s.logger.Debug("Agreement service: delete requested",
		"agreement_id", id,
		"user_id", caller.ID)

	if !caller.Authenticated() {
		return Outcome{}, s.reject(ctx, caller, model.ActionRequestDelete, id, apperrors.NewErrUnauthenticated())
	}
	if caller.IsAdmin() {
		return s.AdminDelete(ctx, caller, id)
	}

	var out Outcome
	err := s.repo.Serialize(func() error {
		a, ok := s.repo.Fresh(ctx, id)
		if !ok {
			return s.reject(ctx, caller, model.ActionRequestDelete, id, apperrors.NewErrAgreementNotFound(id))
		}
		isCreator := a.CreatorID == caller.ID
		isRecipient := a.RecipientID != "" && a.RecipientID == caller.ID
		if !isCreator && !isRecipient {
			return s.reject(ctx, caller, model.ActionRequestDelete, id, apperrors.NewErrUnauthorized("You cannot delete this agreement"))
		}

		switch {
		case a.Status == model.StatusPending && isCreator:
			warnings := s.remove(ctx, id)
			s.audit(ctx, caller, model.ActionDelete, id, "Immediate deletion")
			out = Outcome{Removed: true, Message: "Agreement deleted!", Warnings: warnings}
			return nil

		case a.Status == model.StatusAccepted:
			if a.HasDeleteRequestFrom(caller.ID) {
				out = Outcome{Agreement: &a, AlreadyRequested: true, Message: "You already requested to delete this agreement"}
				return nil
			}
			a.DeleteRequestedBy = append(a.DeleteRequestedBy, caller.ID)

			if a.BothPartiesRequestedDelete() {
				warnings := s.remove(ctx, id)
				s.audit(ctx, caller, model.ActionDelete, id, "Both parties requested deletion")
				s.logger.Info("Agreement service: agreement deleted by consensus", "agreement_id", id)
				out = Outcome{Removed: true, Message: "Agreement deleted!", Warnings: warnings}
				return nil
			}

			other := a.RecipientID
			if isRecipient {
				other = a.CreatorID
			}
			warnings, err := s.persist(ctx, a)
			if err != nil {
				return s.reject(ctx, caller, model.ActionRequestDelete, id, apperrors.NewErrAgreementNotFound(id))
			}
			s.notifications.MarkUnread(ctx, other)
			s.audit(ctx, caller, model.ActionRequestDelete, id, "")
			out = Outcome{
				Agreement: &a,
				Message:   "Delete requested. The agreement will be deleted when the other party also requests deletion.",
				Warnings:  warnings,
			}
			return nil

		default:
			return s.reject(ctx, caller, model.ActionRequestDelete, id, apperrors.NewErrInvalidState("You cannot delete this agreement"))
		}
	})
	return out, err
}

// AdminDelete removes an agreement unconditionally.
func (s *Agreements) AdminDelete(ctx context.Context, caller model.Caller, id string) (Outcome, error) {
	if !caller.Authenticated() {
		return Outcome{}, s.reject(ctx, caller, model.ActionAdminDelete, id, apperrors.NewErrUnauthenticated())
	}

	var out Outcome
	err := s.repo.Serialize(func() error {
		if _, ok := s.repo.Fresh(ctx, id); !ok {
			return s.reject(ctx, caller, model.ActionAdminDelete, id, apperrors.NewErrAgreementNotFound(id))
		}
		if !caller.IsAdmin() {
			return s.reject(ctx, caller, model.ActionAdminDelete, id, apperrors.NewErrUnauthorized("Only admins can delete any agreement"))
		}

		warnings := s.remove(ctx, id)
		s.audit(ctx, caller, model.ActionAdminDelete, id, "Admin deletion")
		s.logger.Info("Agreement service: agreement deleted by admin",
			"agreement_id", id,
			"user_id", caller.ID)

		out = Outcome{Removed: true, Message: "Agreement deleted by admin!", Warnings: warnings}
		return nil
	})
	return out, err
}

// Get returns the agreement with the caller's permissions. Anyone holding
// the link may view an agreement that is still waiting for a recipient.
func (s *Agreements) Get(ctx context.Context, caller model.Caller, id string) (model.Agreement, model.Permissions, error) {
	a, ok := s.repo.GetByID(ctx, id)
	if !ok {
		return model.Agreement{}, model.Permissions{}, apperrors.NewErrAgreementNotFound(id)
	}

	perms := Permissions(caller, a)
	if !perms.CanView {
		return model.Agreement{}, model.Permissions{}, s.reject(ctx, caller, model.ActionView, id,
			apperrors.NewErrUnauthorized("You do not have access to this agreement"))
	}
	return a, perms, nil
}

// List returns the caller's agreements of tab matching query and status.
func (s *Agreements) List(ctx context.Context, caller model.Caller, tab, query, status string) ([]model.Agreement, error) {
	if !caller.Authenticated() {
		return nil, apperrors.NewErrUnauthenticated()
	}
	if status != "" && status != StatusAll && !model.AgreementStatus(status).Valid() {
		return nil, apperrors.NewErrInvalidArgument("unknown status " + status)
	}

	views := s.repo.GetAll(caller.ID, caller.IsAdmin())
	var agreements []model.Agreement
	switch tab {
	case "", TabAll:
		agreements = views.Combined
	case TabSent:
		agreements = views.Sent
	case TabReceived:
		agreements = views.Received
	default:
		return nil, apperrors.NewErrInvalidArgument("unknown tab " + tab)
	}
	return Filter(agreements, query, status), nil
}

// persist writes a to memory, the local tier and the remote table. The last
// two only degrade to warnings, except that a remote row deleted in the
// meantime drops the stale copy and yields ErrNotFound.
func (s *Agreements) persist(ctx context.Context, a model.Agreement) ([]string, error) {
	s.repo.Put(a)

	var warnings []string
	if !s.local.Upsert(ctx, a) {
		warnings = append(warnings, WarningLocalWrite)
	}
	err := s.mirror.Update(ctx, a)
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.repo.Remove(a.ID)
		s.local.Remove(ctx, a.ID)
		s.logger.Warn("Agreement service: agreement was deleted remotely, dropping stale copy",
			"agreement_id", a.ID)
		return nil, model.ErrNotFound
	case err != nil:
		warnings = append(warnings, WarningRemoteWrite)
	}
	s.warn(a.ID, warnings)
	return warnings, nil
}

// remove deletes id from memory and the local tier and soft deletes the
// remote row.
func (s *Agreements) remove(ctx context.Context, id string) []string {
	s.repo.Remove(id)

	var warnings []string
	if !s.local.Remove(ctx, id) {
		warnings = append(warnings, WarningLocalWrite)
	}
	if !s.mirror.SoftDelete(ctx, id) {
		warnings = append(warnings, WarningRemoteWrite)
	}
	s.warn(id, warnings)
	return warnings
}

func (s *Agreements) warn(id string, warnings []string) {
	for _, w := range warnings {
		s.logger.Warn("Agreement service: degraded durability",
			"agreement_id", id,
			"warning", w)
	}
}

func (s *Agreements) audit(ctx context.Context, caller model.Caller, action model.AccessAction, id, details string) {
	s.accessLog.Record(ctx, model.AccessLogEntry{
		UserID:      caller.ID,
		UserName:    caller.Name,
		Action:      action,
		AgreementID: id,
		Success:     true,
		Details:     details,
	})
}

// reject records a failed operation and returns err.
func (s *Agreements) reject(ctx context.Context, caller model.Caller, action model.AccessAction, id string, err *apperrors.Error) error {
	s.logger.Info("Agreement service: operation rejected",
		"action", action,
		"agreement_id", id,
		"user_id", caller.ID,
		"error", err.Message)

	s.accessLog.Record(ctx, model.AccessLogEntry{
		UserID:      caller.ID,
		UserName:    caller.Name,
		Action:      action,
		AgreementID: id,
		Success:     false,
		Error:       err.Message,
	})
	return err
}
