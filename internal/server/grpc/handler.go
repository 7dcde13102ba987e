package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
)

func (s *GRPCServer) LogIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	email := fields["email"].GetStringValue()
	password := fields["password"].GetStringValue()
	if email == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	token, err := s.sessions.LogIn(ctx, email, password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return structpb.NewStruct(map[string]any{"token": token})
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	u, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return structpb.NewStruct(map[string]any{"userId": u.ID, "email": u.Email})
}

var statusMapping = []struct {
	target error
	code   codes.Code
}{
	{common.ErrInvalidCredentialFormat, codes.InvalidArgument},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrRegistrationDenied, codes.PermissionDenied},
	{common.ErrUserNotFound, codes.NotFound},
	{common.ErrEmailAlreadyUsed, codes.AlreadyExists},
	{notifications.ErrServiceUnavailable, codes.Unavailable},
	{notifications.ErrServiceTimeout, codes.DeadlineExceeded},
	{notifications.ErrServiceRejected, codes.Unavailable},
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	for _, m := range statusMapping {
		if errors.Is(err, m.target) {
			return status.Error(m.code, m.target.Error())
		}
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
