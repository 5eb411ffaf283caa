package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ghuser/inventory/pkg/database"
	userdomain "github.com/ghuser/inventory/services/user/domain"
	"github.com/ghuser/inventory/services/user/domain/models"
	"github.com/ghuser/inventory/services/user/infrastructure/persistence/postgres/db"
)

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	q *db.Queries
}

// NewUserRepository returns a UserRepository backed by the given connection pool.
func NewUserRepository(database *database.Database) *UserRepository {
	return &UserRepository{q: db.New(database.DB())}
}

// Save inserts a new User.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	row, err := r.q.InsertUser(ctx, db.InsertUserParams{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return userdomain.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = row.ID
	user.CreatedAt = row.CreatedAt.UTC()
	return nil
}

// GetByUsername retrieves a User by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row, err := r.q.GetUserByUsername(ctx, username)
	return toUser(row, err)
}

// GetByID retrieves a User by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	return toUser(row, err)
}

func toUser(row db.User, err error) (*models.User, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userdomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &models.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}
