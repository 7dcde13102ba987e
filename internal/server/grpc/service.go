package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The Session service has no generated stubs: messages are the protobuf
// well-known Struct and Empty types.
const (
	SessionServiceName = "gophauth.v1.Session"
	LogInMethod        = "/" + SessionServiceName + "/LogIn"
	WhoAmIMethod       = "/" + SessionServiceName + "/WhoAmI"
)

type SessionServer interface {
	// LogIn takes {"email", "password"} and returns {"token"}.
	LogIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// WhoAmI returns {"userId", "email"} of the caller's session.
	WhoAmI(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

var sessionServiceDesc = grpc.ServiceDesc{
	ServiceName: SessionServiceName,
	HandlerType: (*SessionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LogIn", Handler: logInHandler},
		{MethodName: "WhoAmI", Handler: whoAmIHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/session.proto",
}

func RegisterSessionServer(s grpc.ServiceRegistrar, srv SessionServer) {
	s.RegisterService(&sessionServiceDesc, srv)
}

func logInHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServer).LogIn(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LogInMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServer).LogIn(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func whoAmIHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServer).WhoAmI(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WhoAmIMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServer).WhoAmI(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
