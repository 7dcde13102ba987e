package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		hasher PasswordHasher
	}{
		{"bcrypt", NewBcryptHasher(bcrypt.MinCost)},
		{"argon2id", NewArgon2Hasher()},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash, err := tt.hasher.Hash("longenough1")
			require.NoError(t, err)
			assert.NotEqual(t, "longenough1", hash)

			assert.True(t, tt.hasher.Verify(hash, "longenough1"))
			assert.False(t, tt.hasher.Verify(hash, "longenough2"))

			again, err := tt.hasher.Hash("longenough1")
			require.NoError(t, err)
			assert.NotEqual(t, hash, again, "hashes must be salted")
		})
	}
}

func TestHashers_MalformedHashIsMismatch(t *testing.T) {
	t.Parallel()

	for _, h := range []PasswordHasher{NewBcryptHasher(bcrypt.MinCost), NewArgon2Hasher()} {
		for _, bad := range []string{"", "plain", "$2a$10$short", "$argon2id$v=19$broken"} {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify(bad, "whatever1"))
			})
		}
	}
}

func TestNewBcryptHasher_CostOutOfRange(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}

func TestNewPasswordHasher(t *testing.T) {
	t.Parallel()

	h, err := NewPasswordHasher(HasherBcrypt, 4)
	require.NoError(t, err)
	assert.IsType(t, &BcryptHasher{}, h)

	h, err = NewPasswordHasher(HasherArgon2id, 0)
	require.NoError(t, err)
	assert.IsType(t, &Argon2Hasher{}, h)

	_, err = NewPasswordHasher("md5", 0)
	assert.Error(t, err)
}

func TestHashers_LongPasswords(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 73)
	cjk := strings.Repeat("日", 25)

	for _, h := range []PasswordHasher{NewBcryptHasher(bcrypt.MinCost), NewArgon2Hasher()} {
		for _, pw := range []string{long, cjk} {
			hash, err := h.Hash(pw)
			require.NoError(t, err)
			assert.True(t, h.Verify(hash, pw))
		}

		hash, err := h.Hash(long)
		require.NoError(t, err)
		assert.False(t, h.Verify(hash, long+"b"), "bytes past 72 must still count")
	}
}
