package client

import "context"

// Identity is the caller as seen by the server.
type Identity struct {
	UserID string
	Email  string
}

type Client interface {
	Close() error
	LogIn(ctx context.Context, email string, password []byte) error
	WhoAmI(ctx context.Context) (*Identity, error)
	Ping(ctx context.Context) error
	LogOut()
}
