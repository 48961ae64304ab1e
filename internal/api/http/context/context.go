package context

import (
	"context"

	"github.com/dtroode/pactpal-server/internal/model"
)

type callerKey struct{}

// Manager keeps the authenticated caller in the request context.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) SetCallerToContext(ctx context.Context, caller model.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// GetCallerFromContext returns the caller and whether one was authenticated.
func (m *Manager) GetCallerFromContext(ctx context.Context) (model.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(model.Caller)
	if !ok || !caller.Authenticated() {
		return model.Caller{}, false
	}
	return caller, true
}
