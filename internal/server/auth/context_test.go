package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

func TestUserContext(t *testing.T) {
	t.Parallel()

	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	u := &models.User{ID: "u-1", Email: "a@b.com"}
	got, ok := UserFromContext(WithUser(context.Background(), u))
	assert.True(t, ok)
	assert.Same(t, u, got)

	_, ok = UserFromContext(WithUser(context.Background(), nil))
	assert.False(t, ok)
}
