package model

import (
	"context"
	"time"
)

// AccessAction names an audited operation.
type AccessAction string

const (
	ActionCreate        AccessAction = "create"
	ActionRespond       AccessAction = "respond"
	ActionDelete        AccessAction = "delete"
	ActionRequestDelete AccessAction = "requestDelete"
	ActionAdminDelete   AccessAction = "adminDelete"
	ActionAdminClear    AccessAction = "adminClear"
	ActionView          AccessAction = "view"
)

// MaxAccessLogEntries bounds the persisted access log.
const MaxAccessLogEntries = 1000

// AccessLogEntry is one audited action.
type AccessLogEntry struct {
	UserID      string       `json:"userId"`
	UserName    string       `json:"userName"`
	Action      AccessAction `json:"action"`
	AgreementID string       `json:"agreementId,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
	Success     bool         `json:"success"`
	Details     string       `json:"details,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// AccessLogStore persists access log entries.
type AccessLogStore interface {
	Append(ctx context.Context, entry AccessLogEntry) error
	List(ctx context.Context) ([]AccessLogEntry, error)
	Clear(ctx context.Context) error
}

// NotificationStore persists per-user unread flags.
type NotificationStore interface {
	Get(ctx context.Context, userID string) (bool, error)
	Set(ctx context.Context, userID string, unread bool) error
}
