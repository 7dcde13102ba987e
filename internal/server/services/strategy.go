package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// SessionStrategy turns verified credentials into a session artifact and
// resolves an artifact back to its user.
type SessionStrategy interface {
	LogIn(ctx context.Context, email, password string, directory users.Repository) (string, error)
	Resolve(ctx context.Context, artifact string, directory users.Repository) (*models.User, error)
}

// TokenSessionStrategy issues session-purpose JWTs carrying the user ID.
type TokenSessionStrategy struct {
	hasher    auth.PasswordHasher
	codec     *auth.TokenCodec
	key       auth.TokenKey
	dummyHash string
}

func NewTokenSessionStrategy(hasher auth.PasswordHasher, codec *auth.TokenCodec, key auth.TokenKey) (*TokenSessionStrategy, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &TokenSessionStrategy{hasher: hasher, codec: codec, key: key, dummyHash: dummy}, nil
}

// LogIn fails with common.ErrInvalidCredentials for an unknown email and
// for a wrong password alike. An unknown email still pays for one hash
// verification.
func (s *TokenSessionStrategy) LogIn(ctx context.Context, email, password string, directory users.Repository) (string, error) {
	user, err := directory.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(s.dummyHash, password)
			return "", common.ErrInvalidCredentials
		}
		return "", err
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", common.ErrInvalidCredentials
	}

	return s.codec.IssueWith(s.key, map[string]string{auth.ClaimUserID: user.ID})
}

// Resolve verifies a session token and loads its user. A valid token whose
// user no longer exists yields common.ErrorUnauthorized.
func (s *TokenSessionStrategy) Resolve(ctx context.Context, artifact string, directory users.Repository) (*models.User, error) {
	data, err := s.codec.VerifyWith(s.key, artifact)
	if err != nil {
		return nil, err
	}
	userID := data[auth.ClaimUserID]
	if userID == "" {
		return nil, fmt.Errorf("%w: missing %s claim", common.ErrInvalidToken, auth.ClaimUserID)
	}

	user, err := directory.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return user, nil
}
