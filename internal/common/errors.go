// Package common defines shared constants and sentinel errors used across
// the service and adapter layers. Callers should use errors.Is to match
// these values; details are attached by wrapping.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrStorage    = errors.New("storage error")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential errors.
	ErrInvalidCredentialFormat = errors.New("invalid credential format")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrEmailAlreadyUsed        = errors.New("email is already being used")
	ErrUserNotFound            = errors.New("user not found")
	ErrRegistrationDenied      = errors.New("registration denied")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
