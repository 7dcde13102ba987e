// Package users implements the user directory: lookup and persistence of
// identity records behind a narrow Repository contract.
package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is the user directory contract.
//
// GetByID and GetByEmail return common.ErrorNotFound on a miss. Save assigns
// an ID when the user has none and returns common.ErrEmailAlreadyUsed when
// the email is already taken. UpdatePassword returns common.ErrUserNotFound
// when no user matched. Every other failure wraps common.ErrStorage.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrStorage, op, err)
}
