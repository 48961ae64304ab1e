package context

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/dtroode/pactpal-server/internal/model"
)

// Metadata keys holding the authenticated caller.
const (
	userIDKey   = "user_id"
	userNameKey = "user_name"
	userRoleKey = "user_role"
)

// Manager keeps the authenticated caller in the incoming gRPC metadata.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// SetCallerToContext stores caller in the incoming metadata, replacing any
// values a client may have sent under the same keys.
func (m *Manager) SetCallerToContext(ctx context.Context, caller model.Caller) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.MD{}
	} else {
		md = md.Copy()
	}
	md.Set(userIDKey, caller.ID)
	md.Set(userNameKey, caller.Name)
	md.Set(userRoleKey, string(caller.Role))

	return metadata.NewIncomingContext(ctx, md)
}

// GetCallerFromContext returns the caller and whether one was authenticated.
func (m *Manager) GetCallerFromContext(ctx context.Context) (model.Caller, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return model.Caller{}, false
	}

	caller := model.Caller{
		ID:   first(md, userIDKey),
		Name: first(md, userNameKey),
		Role: model.Role(first(md, userRoleKey)),
	}
	if !caller.Authenticated() {
		return model.Caller{}, false
	}
	return caller, true
}

// Strip removes caller keys sent by the client so only the authenticate
// middleware can set them.
func (m *Manager) Strip(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	md = md.Copy()
	md.Delete(userIDKey)
	md.Delete(userNameKey)
	md.Delete(userRoleKey)
	return metadata.NewIncomingContext(ctx, md)
}

func first(md metadata.MD, key string) string {
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
