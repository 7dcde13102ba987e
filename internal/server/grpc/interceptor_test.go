package grpc

import (
	"context"
	"fmt"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type fakeSessions struct {
	users map[string]*models.User // token -> user
	err   error
}

func (f *fakeSessions) LogIn(_ context.Context, email, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	for token, u := range f.users {
		if u.Email == email && password == "longenough1" {
			return token, nil
		}
	}
	return "", common.ErrInvalidCredentials
}

func (f *fakeSessions) Authenticate(_ context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: unknown", common.ErrInvalidToken)
}

func newTestServer(ss SessionService) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), ss)
}

func withBearer(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(),
		metadata.Pairs(common.AuthorizationHeaderName, "Bearer "+token))
}

func TestInterceptor_PublicMethod_AllowsWithoutToken(t *testing.T) {
	s := newTestServer(&fakeSessions{})

	info := &grpc.UnaryServerInfo{FullMethod: LogInMethod}
	handlerCalled := false
	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.sessionInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled || resp != "ok" {
		t.Fatalf("handler not called or unexpected resp: %v", resp)
	}
}

func TestInterceptor_Protected_MissingToken(t *testing.T) {
	s := newTestServer(&fakeSessions{})

	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIMethod}
	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.sessionInterceptor(context.Background(), nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "missing token" {
		t.Fatalf("expected 'missing token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_Protected_InvalidToken(t *testing.T) {
	s := newTestServer(&fakeSessions{})

	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIMethod}
	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	}

	_, err := s.sessionInterceptor(withBearer("not-a-valid-jwt"), nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestInterceptor_Protected_StorageFailure(t *testing.T) {
	s := newTestServer(&fakeSessions{err: fmt.Errorf("%w: db down", common.ErrStorage)})

	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIMethod}
	_, err := s.sessionInterceptor(withBearer("t"), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, nil
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", status.Code(err))
	}
}

func TestInterceptor_Protected_AttachesUser(t *testing.T) {
	u := &models.User{ID: "u-1", Email: "a@b.com"}
	s := newTestServer(&fakeSessions{users: map[string]*models.User{"good": u}})

	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIMethod}
	var got *models.User
	h := func(ctx context.Context, req any) (any, error) {
		got, _ = auth.UserFromContext(ctx)
		return nil, nil
	}

	if _, err := s.sessionInterceptor(withBearer("good"), nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != u {
		t.Fatalf("user not attached: %v", got)
	}
}
