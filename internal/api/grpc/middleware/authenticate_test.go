package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcContext "github.com/dtroode/pactpal-server/internal/api/grpc/context"
	"github.com/dtroode/pactpal-server/internal/apperrors"
	"github.com/dtroode/pactpal-server/internal/model"
	"github.com/dtroode/pactpal-server/internal/testutil"
)

type resolverFunc func(ctx context.Context, token string) (model.Caller, error)

func (f resolverFunc) Caller(ctx context.Context, token string) (model.Caller, error) {
	return f(ctx, token)
}

func TestAuthenticate_AuthFunc(t *testing.T) {
	t.Parallel()

	bob := model.Caller{ID: "u2", Name: "Bob", Role: model.RoleUser}
	resolver := resolverFunc(func(_ context.Context, token string) (model.Caller, error) {
		switch token {
		case "good":
			return bob, nil
		case "expired":
			return model.Caller{}, apperrors.New(apperrors.KindUnauthenticated, "Invalid or expired token")
		default:
			return model.Caller{}, errors.New("signature is invalid")
		}
	})

	tests := []struct {
		name       string
		md         metadata.MD
		wantCode   codes.Code
		wantCaller model.Caller
		wantAuth   bool
	}{
		{name: "no metadata is anonymous", wantCode: codes.OK},
		{name: "no authorization header is anonymous", md: metadata.Pairs("x-trace-id", "t"), wantCode: codes.OK},
		{
			name:     "forged caller metadata is dropped",
			md:       metadata.Pairs("user_id", "admin-1", "user_role", "admin"),
			wantCode: codes.OK,
		},
		{
			name:       "valid token",
			md:         metadata.Pairs("authorization", "Bearer good"),
			wantCode:   codes.OK,
			wantCaller: bob,
			wantAuth:   true,
		},
		{name: "expired token", md: metadata.Pairs("authorization", "Bearer expired"), wantCode: codes.Unauthenticated},
		{name: "garbage token", md: metadata.Pairs("authorization", "Bearer nope"), wantCode: codes.Unauthenticated},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			manager := grpcContext.NewManager()
			m := NewAuthenticate(resolver, manager, testutil.MakeNoopLogger())

			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}
			got, err := m.AuthFunc(ctx)

			if tt.wantCode != codes.OK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, status.Code(err))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			caller, ok := manager.GetCallerFromContext(got)
			assert.Equal(t, tt.wantAuth, ok)
			assert.Equal(t, tt.wantCaller, caller)
		})
	}
}
