package service

import (
	"context"
	"fmt"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/model"
)

// Stats summarizes the service state for admins.
type Stats struct {
	Users            int                           `json:"users"`
	Agreements       int                           `json:"agreements"`
	ByStatus         map[model.AgreementStatus]int `json:"byStatus"`
	AccessLogEntries int                           `json:"accessLogEntries"`
}

func (s *Agreements) requireAdmin(ctx context.Context, caller model.Caller, action model.AccessAction) error {
	if !caller.Authenticated() {
		return s.reject(ctx, caller, action, "", apperrors.NewErrUnauthenticated())
	}
	if !caller.IsAdmin() {
		return s.reject(ctx, caller, action, "", apperrors.NewErrUnauthorized("Admin access required"))
	}
	return nil
}

// AllAgreements returns every known agreement.
func (s *Agreements) AllAgreements(ctx context.Context, caller model.Caller) ([]model.Agreement, error) {
	if err := s.requireAdmin(ctx, caller, model.ActionView); err != nil {
		return nil, err
	}
	return s.repo.GetAll(caller.ID, true).All, nil
}

// ClearAll removes every agreement from every tier.
func (s *Agreements) ClearAll(ctx context.Context, caller model.Caller) (Outcome, error) {
	if err := s.requireAdmin(ctx, caller, model.ActionAdminClear); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err := s.repo.Serialize(func() error {
		agreements := s.local.Load(ctx)
		remote, err := s.mirror.FetchAll(ctx)
		if err != nil {
			s.logger.Warn("Agreement service: remote unavailable while clearing",
				"error", err.Error())
		} else {
			agreements = Merge(agreements, remote)
		}

		var warnings []string
		failed := 0
		for _, a := range agreements {
			if !s.mirror.SoftDelete(ctx, a.ID) {
				failed++
			}
		}
		if failed > 0 || err != nil {
			warnings = append(warnings, WarningRemoteWrite)
		}
		if !s.local.Clear(ctx) {
			warnings = append(warnings, WarningLocalWrite)
		}
		s.repo.Reset()
		s.warn("", warnings)

		details := fmt.Sprintf("Cleared %d agreements", len(agreements))
		s.audit(ctx, caller, model.ActionAdminClear, "", details)
		s.logger.Info("Agreement service: all agreements cleared",
			"user_id", caller.ID,
			"count", len(agreements),
			"remote_failures", failed)

		out = Outcome{Removed: true, Message: "All agreements deleted", Warnings: warnings}
		return nil
	})
	return out, err
}

func (s *Agreements) Stats(ctx context.Context, caller model.Caller) (Stats, error) {
	if err := s.requireAdmin(ctx, caller, model.ActionView); err != nil {
		return Stats{}, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list users: %w", err)
	}
	entries, err := s.accessLog.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	all := s.repo.Snapshot()
	stats := Stats{
		Users:      len(users),
		Agreements: len(all),
		ByStatus: map[model.AgreementStatus]int{
			model.StatusPending:  0,
			model.StatusAccepted: 0,
			model.StatusDeclined: 0,
		},
		AccessLogEntries: len(entries),
	}
	for _, a := range all {
		stats.ByStatus[a.Status]++
	}
	return stats, nil
}

// Logs returns the access log newest first.
func (s *Agreements) Logs(ctx context.Context, caller model.Caller) ([]model.AccessLogEntry, error) {
	if err := s.requireAdmin(ctx, caller, model.ActionView); err != nil {
		return nil, err
	}
	return s.accessLog.ListRecent(ctx)
}

func (s *Agreements) ClearLogs(ctx context.Context, caller model.Caller) error {
	if err := s.requireAdmin(ctx, caller, model.ActionAdminClear); err != nil {
		return err
	}
	if err := s.accessLog.Clear(ctx); err != nil {
		return apperrors.NewErrStorageFailure(err)
	}
	s.logger.Info("Agreement service: access log cleared", "user_id", caller.ID)
	return nil
}
