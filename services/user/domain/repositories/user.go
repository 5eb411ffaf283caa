package repositories

import (
	"context"

	"github.com/ghuser/inventory/services/user/domain/models"
)

// UserRepository is the persistence interface for User accounts.
type UserRepository interface {
	// Save inserts a new User and fills in its ID and CreatedAt.
	// Returns ErrUsernameTaken on a duplicate username.
	Save(ctx context.Context, user *models.User) error

	// GetByUsername returns ErrUserNotFound if no user matches.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	GetByID(ctx context.Context, id int64) (*models.User, error)
}
