package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// SessionService delegates login and artifact resolution to its strategy.
type SessionService struct {
	strategy SessionStrategy
	users    users.Repository
	observers
}

func NewSessionService(strategy SessionStrategy, repo users.Repository, opts ...Option) *SessionService {
	return &SessionService{
		strategy:  strategy,
		users:     repo,
		observers: newObservers("session", opts),
	}
}

func (s *SessionService) LogIn(ctx context.Context, email, password string) (string, error) {
	s.log.Debug(ctx, "login attempt", "email", email)

	artifact, err := s.strategy.LogIn(ctx, email, password, s.users)
	switch {
	case err == nil:
		s.metrics.RecordLogin(metrics.ResultSuccess)
		s.metrics.RecordTokenIssued(string(auth.PurposeSession))
		s.log.Debug(ctx, "login succeeded", "email", email)
		return artifact, nil
	case errors.Is(err, common.ErrInvalidCredentials):
		s.metrics.RecordLogin(metrics.ResultInvalidCredentials)
		s.log.Debug(ctx, "login rejected", "email", email)
	default:
		s.metrics.RecordLogin(metrics.ResultError)
		s.log.Error(ctx, "login failed", "email", email, "error", err)
	}
	return "", err
}

// Authenticate resolves a session artifact to its user.
func (s *SessionService) Authenticate(ctx context.Context, artifact string) (*models.User, error) {
	return s.strategy.Resolve(ctx, artifact, s.users)
}
