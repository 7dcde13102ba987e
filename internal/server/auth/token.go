// Package auth holds the credential primitives: password hashing, signed
// purpose-bound tokens and the request-context carrier for the
// authenticated user.
package auth

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Purpose names what a token authorizes. Each purpose is signed with its
// own secret.
type Purpose string

const (
	PurposeSession       Purpose = "session"
	PurposePasswordReset Purpose = "password-reset"
	PurposeInvitation    Purpose = "invitation"
	PurposeGeneric       Purpose = "generic"
)

// Claim keys carried in token data.
const (
	ClaimUserID = "userId"
	ClaimEmail  = "email"
)

// TokenKey binds a purpose to its signing secret and lifetime.
type TokenKey struct {
	Purpose Purpose
	Secret  []byte
	TTL     time.Duration
}

// TokenKeys groups the keys of every purpose the service issues.
type TokenKeys struct {
	Session       TokenKey
	PasswordReset TokenKey
	Invitation    TokenKey
}

type tokenClaims struct {
	Purpose Purpose           `json:"pur"`
	Data    map[string]string `json:"data,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 JWTs. It holds no secrets and is
// safe for concurrent use.
type TokenCodec struct {
	now func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock replaces time.Now as the codec's time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

func NewTokenCodec(opts ...CodecOption) *TokenCodec {
	c := &TokenCodec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue signs claims for purpose with secret. The token stays valid for at
// least ttl after the codec's current time; exp is rounded up to the next
// whole second because NumericDate carries second precision.
func (c *TokenCodec) Issue(purpose Purpose, claims map[string]string, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: empty signing secret for %s token", common.ErrorInternal, purpose)
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Purpose: purpose,
		Data:    maps.Clone(claims),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now.Truncate(time.Second)),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(ttl))),
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %w", common.ErrorInternal, err)
	}
	return signed, nil
}

func ceilSecond(t time.Time) time.Time {
	if f := t.Truncate(time.Second); f.Before(t) {
		return f.Add(time.Second)
	}
	return t
}

// IssueWith is Issue with the purpose, secret and TTL taken from key.
func (c *TokenCodec) IssueWith(key TokenKey, claims map[string]string) (string, error) {
	return c.Issue(key.Purpose, claims, key.Secret, key.TTL)
}

// Verify checks the signature with secret, the expiry and the embedded
// purpose, then returns the token data. Expired tokens yield
// common.ErrTokenExpired; every other failure yields common.ErrInvalidToken.
func (c *TokenCodec) Verify(purpose Purpose, tokenString string, secret []byte) (map[string]string, error) {
	if tokenString == "" || len(secret) == 0 {
		return nil, common.ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	claims := &tokenClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if claims.Purpose != purpose {
		return nil, fmt.Errorf("%w: purpose %q, want %q", common.ErrInvalidToken, claims.Purpose, purpose)
	}

	if claims.Data == nil {
		return map[string]string{}, nil
	}
	return claims.Data, nil
}

// VerifyWith is Verify with the purpose and secret taken from key.
func (c *TokenCodec) VerifyWith(key TokenKey, tokenString string) (map[string]string, error) {
	return c.Verify(key.Purpose, tokenString, key.Secret)
}

// DecodeUnsafe reads purpose and data without checking the signature or
// the expiry. The result must not be trusted for authorization.
func (c *TokenCodec) DecodeUnsafe(tokenString string) (Purpose, map[string]string, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims.Purpose, claims.Data, nil
}
