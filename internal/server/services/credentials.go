// Package services contains the server-side business logic: registration,
// password reset, invitations and session login.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// TokenKeysFromConfig builds the per-purpose signing keys.
func TokenKeysFromConfig(cfg *config.Config) auth.TokenKeys {
	return auth.TokenKeys{
		Session: auth.TokenKey{
			Purpose: auth.PurposeSession,
			Secret:  []byte(cfg.SessionSecret),
			TTL:     cfg.SessionTokenValidityDuration,
		},
		PasswordReset: auth.TokenKey{
			Purpose: auth.PurposePasswordReset,
			Secret:  []byte(cfg.PasswordResetSecret),
			TTL:     cfg.PasswordResetTokenValidityDuration,
		},
		Invitation: auth.TokenKey{
			Purpose: auth.PurposeInvitation,
			Secret:  []byte(cfg.InvitationSecret),
			TTL:     cfg.InvitationTokenValidityDuration,
		},
	}
}

// CredentialService owns registration, password reset and invitations.
type CredentialService struct {
	users              users.Repository
	hasher             auth.PasswordHasher
	codec              *auth.TokenCodec
	keys               auth.TokenKeys
	sender             notifications.Sender
	masterToken        []byte
	invitationRequired bool
	rules              credentialRules
	observers
}

func NewCredentialService(
	repo users.Repository,
	hasher auth.PasswordHasher,
	codec *auth.TokenCodec,
	sender notifications.Sender,
	cfg *config.Config,
	opts ...Option,
) *CredentialService {
	return &CredentialService{
		users:              repo,
		hasher:             hasher,
		codec:              codec,
		keys:               TokenKeysFromConfig(cfg),
		sender:             sender,
		masterToken:        []byte(cfg.MasterToken),
		invitationRequired: cfg.InvitationRequired,
		rules:              credentialRules{v: NewValidator()},
		observers:          newObservers("credentials", opts),
	}
}

// Register creates a user. Checks run in a fixed order: invitation binding,
// email uniqueness, email shape, password length.
func (s *CredentialService) Register(ctx context.Context, email, password, invitationToken string) (*models.User, error) {
	s.log.Debug(ctx, "attempting to register user", "email", email)

	user, err := s.register(ctx, email, password, invitationToken)
	s.metrics.RecordRegistration(registrationResult(err))
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *CredentialService) register(ctx context.Context, email, password, invitationToken string) (*models.User, error) {
	if err := s.checkInvitation(email, invitationToken); err != nil {
		return nil, err
	}

	used, err := s.emailIsUsed(ctx, email)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, common.ErrEmailAlreadyUsed
	}

	if err := s.rules.email(email); err != nil {
		return nil, err
	}
	if err := s.rules.password(password); err != nil {
		return nil, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	return s.users.Save(ctx, &models.User{Email: email, PasswordHash: hash})
}

// checkInvitation accepts the master token as-is and otherwise requires a
// valid invitation token bound to email. An empty token means open
// registration unless invitations are required.
func (s *CredentialService) checkInvitation(email, token string) error {
	if token == "" {
		if s.invitationRequired {
			return fmt.Errorf("%w: invitation token required", common.ErrRegistrationDenied)
		}
		return nil
	}

	if len(s.masterToken) > 0 && subtle.ConstantTimeCompare([]byte(token), s.masterToken) == 1 {
		return nil
	}

	data, err := s.codec.VerifyWith(s.keys.Invitation, token)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRegistrationDenied, err)
	}
	if data[auth.ClaimEmail] != email {
		return fmt.Errorf("%w: email does not match the invitation", common.ErrRegistrationDenied)
	}
	return nil
}

// ForgotPassword mails a password-reset token to the owner of email.
// Unknown emails fail with common.ErrUserNotFound. Delivery failures are
// returned to the caller.
func (s *CredentialService) ForgotPassword(ctx context.Context, email string) error {
	s.log.Debug(ctx, "password reset requested", "email", email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}

	token, err := s.issue(s.keys.PasswordReset, map[string]string{auth.ClaimUserID: user.ID})
	if err != nil {
		return err
	}

	s.log.Debug(ctx, "password reset token issued, sending notification", "user_id", user.ID)
	return s.notify(ctx, auth.PurposePasswordReset, email, token)
}

// ResetPasswordTokenIsValid reports whether token is a live password-reset
// token. It never fails.
func (s *CredentialService) ResetPasswordTokenIsValid(token string) bool {
	_, err := s.codec.VerifyWith(s.keys.PasswordReset, token)
	return err == nil
}

// UpdatePasswordWithToken sets a new password for the user named in a
// password-reset token.
func (s *CredentialService) UpdatePasswordWithToken(ctx context.Context, token, newPassword string) error {
	data, err := s.codec.VerifyWith(s.keys.PasswordReset, token)
	if err != nil {
		return err
	}
	userID := data[auth.ClaimUserID]
	if userID == "" {
		return fmt.Errorf("%w: missing %s claim", common.ErrInvalidToken, auth.ClaimUserID)
	}

	if err := s.rules.password(newPassword); err != nil {
		return err
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.log.Debug(ctx, "password updated", "user_id", userID)
	return nil
}

// InviteUser mails an invitation token bound to email. The invited user
// picks a password when registering with that token.
func (s *CredentialService) InviteUser(ctx context.Context, email string) error {
	s.log.Debug(ctx, "invitation requested", "email", email)

	used, err := s.emailIsUsed(ctx, email)
	if err != nil {
		return err
	}
	if used {
		return common.ErrEmailAlreadyUsed
	}
	if err := s.rules.email(email); err != nil {
		return err
	}

	token, err := s.issue(s.keys.Invitation, map[string]string{auth.ClaimEmail: email})
	if err != nil {
		return err
	}

	return s.notify(ctx, auth.PurposeInvitation, email, token)
}

// GetUserByID returns common.ErrUserNotFound when no user has id.
func (s *CredentialService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return notFoundAsUserNotFound(s.users.GetByID(ctx, id))
}

// GetByEmail returns common.ErrUserNotFound when no user has email.
func (s *CredentialService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return notFoundAsUserNotFound(s.users.GetByEmail(ctx, email))
}

func notFoundAsUserNotFound(u *models.User, err error) (*models.User, error) {
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrUserNotFound
	}
	return u, err
}

func (s *CredentialService) emailIsUsed(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *CredentialService) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentialFormat) {
			return "", err
		}
		return "", fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}
	return hash, nil
}

func (s *CredentialService) issue(key auth.TokenKey, claims map[string]string) (string, error) {
	token, err := s.codec.IssueWith(key, claims)
	if err != nil {
		return "", err
	}
	s.metrics.RecordTokenIssued(string(key.Purpose))
	return token, nil
}

func (s *CredentialService) notify(ctx context.Context, purpose auth.Purpose, email, token string) error {
	err := s.sender.Send(ctx, purpose, []string{email}, map[string]string{notifications.ParamToken: token})
	s.metrics.RecordNotification(string(purpose), deliveryResult(err))
	if err != nil {
		s.log.Error(ctx, "notification delivery failed", "purpose", purpose, "error", err)
		return fmt.Errorf("send %s notification: %w", purpose, err)
	}
	return nil
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, common.ErrRegistrationDenied):
		return metrics.ResultDenied
	case errors.Is(err, common.ErrEmailAlreadyUsed):
		return metrics.ResultEmailAlreadyUsed
	case errors.Is(err, common.ErrInvalidCredentialFormat):
		return metrics.ResultInvalidFormat
	default:
		return metrics.ResultError
	}
}

func deliveryResult(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, notifications.ErrServiceTimeout):
		return "timeout"
	case errors.Is(err, notifications.ErrServiceRejected):
		return "rejected"
	case errors.Is(err, notifications.ErrServiceUnavailable):
		return "unavailable"
	default:
		return metrics.ResultError
	}
}
