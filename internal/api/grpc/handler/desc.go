package handler

import (
	"context"

	"google.golang.org/grpc"

	_ "github.com/dtroode/pactpal-server/internal/api/grpc/codec"
	"github.com/dtroode/pactpal-server/internal/service"
)

// Service names as registered on the gRPC server.
const (
	AuthServiceName       = "pactpal.Auth"
	AgreementsServiceName = "pactpal.Agreements"
)

// AuthServer is the server API of pactpal.Auth.
type AuthServer interface {
	Signup(ctx context.Context, req *SignupRequest) (*service.Session, error)
	Login(ctx context.Context, req *LoginRequest) (*service.Session, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*service.Session, error)
}

// AgreementsServer is the server API of pactpal.Agreements.
type AgreementsServer interface {
	Create(ctx context.Context, req *CreateRequest) (*service.Outcome, error)
	Get(ctx context.Context, req *AgreementRequest) (*GetResponse, error)
	List(ctx context.Context, req *ListRequest) (*ListResponse, error)
	Respond(ctx context.Context, req *RespondRequest) (*service.Outcome, error)
	RequestDelete(ctx context.Context, req *AgreementRequest) (*service.Outcome, error)
	NotificationStatus(ctx context.Context, req *Empty) (*StatusResponse, error)
	Feed(ctx context.Context, req *Empty) (*service.Feed, error)
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthServiceName, "Signup", AuthServer.Signup),
		unary(AuthServiceName, "Login", AuthServer.Login),
		unary(AuthServiceName, "Refresh", AuthServer.Refresh),
	},
}

var AgreementsServiceDesc = grpc.ServiceDesc{
	ServiceName: AgreementsServiceName,
	HandlerType: (*AgreementsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AgreementsServiceName, "Create", AgreementsServer.Create),
		unary(AgreementsServiceName, "Get", AgreementsServer.Get),
		unary(AgreementsServiceName, "List", AgreementsServer.List),
		unary(AgreementsServiceName, "Respond", AgreementsServer.Respond),
		unary(AgreementsServiceName, "RequestDelete", AgreementsServer.RequestDelete),
		unary(AgreementsServiceName, "NotificationStatus", AgreementsServer.NotificationStatus),
		unary(AgreementsServiceName, "Feed", AgreementsServer.Feed),
	},
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

func RegisterAgreementsServer(s grpc.ServiceRegistrar, srv AgreementsServer) {
	s.RegisterService(&AgreementsServiceDesc, srv)
}

// unary builds the method descriptor dispatching to call on a server of
// type S.
func unary[S, Req, Resp any](serviceName, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + serviceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			})
		},
	}
}
