package service

import (
	"context"
	"slices"

	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/model"
)

const recentlyUpdatedLimit = 10

// Feed is the notifications view of one user.
type Feed struct {
	// RecentlyUpdated are sent agreements someone has responded to, newest first.
	RecentlyUpdated []model.Agreement `json:"recentlyUpdated"`
	// PendingAction are received agreements still waiting for a response.
	PendingAction []model.Agreement `json:"pendingAction"`
}

func (s *Agreements) HasUnread(ctx context.Context, caller model.Caller) (bool, error) {
	if !caller.Authenticated() {
		return false, apperrors.NewErrUnauthenticated()
	}
	return s.notifications.HasUnread(ctx, caller.ID), nil
}

// Feed builds the caller's notifications view and marks it as read.
func (s *Agreements) Feed(ctx context.Context, caller model.Caller) (Feed, error) {
	if !caller.Authenticated() {
		return Feed{}, apperrors.NewErrUnauthenticated()
	}

	views := s.repo.GetAll(caller.ID, false)
	feed := Feed{
		RecentlyUpdated: []model.Agreement{},
		PendingAction:   []model.Agreement{},
	}
	for _, a := range views.Sent {
		if a.Status != model.StatusPending && a.RecipientID != "" {
			feed.RecentlyUpdated = append(feed.RecentlyUpdated, a)
		}
	}
	slices.SortStableFunc(feed.RecentlyUpdated, func(a, b model.Agreement) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(feed.RecentlyUpdated) > recentlyUpdatedLimit {
		feed.RecentlyUpdated = feed.RecentlyUpdated[:recentlyUpdatedLimit]
	}
	for _, a := range views.Received {
		if a.Status == model.StatusPending {
			feed.PendingAction = append(feed.PendingAction, a)
		}
	}

	s.notifications.Clear(ctx, caller.ID)
	return feed, nil
}
