package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes passwords one way and checks candidates against a
// stored hash. Verify never fails loudly: a malformed hash is a mismatch.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, candidate string) bool
}

// Supported hasher names.
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// NewPasswordHasher returns the hasher registered under name.
func NewPasswordHasher(name string, bcryptCost int) (PasswordHasher, error) {
	switch name {
	case HasherBcrypt, "":
		return NewBcryptHasher(bcryptCost), nil
	case HasherArgon2id:
		return NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// BcryptHasher feeds bcrypt a base64 SHA-256 digest of the password, so
// passwords longer than bcrypt's 72-byte input limit are not rejected or
// silently cut.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(prehash(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(candidate)) == nil
}

func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// Argon2Hasher produces PHC-encoded argon2id hashes.
type Argon2Hasher struct {
	cfg argon2.Config
}

func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{cfg: argon2.DefaultConfig()}
}

func (h *Argon2Hasher) Hash(plaintext string) (string, error) {
	encoded, err := h.cfg.HashEncoded([]byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("argon2: %w", err)
	}
	return string(encoded), nil
}

func (h *Argon2Hasher) Verify(hash, candidate string) bool {
	ok, err := argon2.VerifyEncoded([]byte(candidate), []byte(hash))
	return err == nil && ok
}
