package model

import (
	"context"
	"slices"
	"time"
)

// AgreementStatus is the lifecycle state of an agreement.
type AgreementStatus string

const (
	StatusPending  AgreementStatus = "pending"
	StatusAccepted AgreementStatus = "accepted"
	StatusDeclined AgreementStatus = "declined"
)

// Valid reports whether s is one of the known statuses.
func (s AgreementStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// DefaultCreatorName is used for remote rows that carry no creator name.
const DefaultCreatorName = "Anonymous"

// Agreement is a text agreement between a creator and at most one recipient.
// The JSON shape is the one persisted in the local key-value tier.
type Agreement struct {
	ID                string          `json:"id"`
	Message           string          `json:"message"`
	CreatedAt         time.Time       `json:"createdAt"`
	CreatorID         string          `json:"creatorId"`
	CreatorName       string          `json:"creatorName"`
	RecipientID       string          `json:"recipientId,omitempty"`
	RecipientName     string          `json:"recipientName,omitempty"`
	Status            AgreementStatus `json:"status"`
	DeleteRequestedBy []string        `json:"deleteRequestedBy"`
	IsDeleted         bool            `json:"isDeleted,omitempty"`
}

// Clone returns a copy that shares no memory with a.
func (a Agreement) Clone() Agreement {
	a.DeleteRequestedBy = slices.Clone(a.DeleteRequestedBy)
	if a.DeleteRequestedBy == nil {
		a.DeleteRequestedBy = []string{}
	}
	return a
}

// HasDeleteRequestFrom reports whether userID already asked to delete a.
func (a Agreement) HasDeleteRequestFrom(userID string) bool {
	return slices.Contains(a.DeleteRequestedBy, userID)
}

// BothPartiesRequestedDelete reports whether the creator and the recipient
// are both in the delete set.
func (a Agreement) BothPartiesRequestedDelete() bool {
	return a.RecipientID != "" &&
		a.HasDeleteRequestFrom(a.CreatorID) &&
		a.HasDeleteRequestFrom(a.RecipientID)
}

// InvolvesUser reports whether userID is the creator or the recipient.
func (a Agreement) InvolvesUser(userID string) bool {
	if userID == "" {
		return false
	}
	return a.CreatorID == userID || a.RecipientID == userID
}

// AgreementViews are the per-user projections of the agreement collection.
type AgreementViews struct {
	Sent     []Agreement `json:"sent"`
	Received []Agreement `json:"received"`
	Combined []Agreement `json:"combined"`
	All      []Agreement `json:"all"`
}

// Permissions describe what a caller may do with one agreement.
type Permissions struct {
	IsCreator          bool `json:"isCreator"`
	IsRecipient        bool `json:"isRecipient"`
	HasRequestedDelete bool `json:"hasRequestedDelete"`
	CanView            bool `json:"canView"`
	CanRespond         bool `json:"canRespond"`
	CanDelete          bool `json:"canDelete"`
}

// LocalAgreementStore is the durable local copy of the agreement collection.
type LocalAgreementStore interface {
	Load(ctx context.Context) []Agreement
	Save(ctx context.Context, agreements []Agreement) bool
	FindByID(ctx context.Context, id string) (Agreement, bool)
	Update(ctx context.Context, fn func([]Agreement) ([]Agreement, bool)) bool
	Ensure(ctx context.Context, agreement Agreement) bool
	Upsert(ctx context.Context, agreement Agreement) bool
	Remove(ctx context.Context, id string) bool
	Clear(ctx context.Context) bool
}

// RemoteAgreementStore is the hosted agreements table.
type RemoteAgreementStore interface {
	GetByID(ctx context.Context, id string) (Agreement, error)
	GetForUser(ctx context.Context, userID string) ([]Agreement, error)
	GetAll(ctx context.Context) ([]Agreement, error)
	Create(ctx context.Context, agreement Agreement) (string, error)
	Update(ctx context.Context, agreement Agreement) error
	SoftDelete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
