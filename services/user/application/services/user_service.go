package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/logger"
	userdomain "github.com/ghuser/inventory/services/user/domain"
	"github.com/ghuser/inventory/services/user/domain/models"
	"github.com/ghuser/inventory/services/user/domain/repositories"
)

// UserService handles account registration and credential checks.
type UserService struct {
	repo repositories.UserRepository
	log  logger.Logger
}

// NewUserService returns a UserService backed by repo.
func NewUserService(repo repositories.UserRepository, log logger.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// Register creates a new account.
// Returns ErrInvalidUser for bad credentials and ErrUsernameTaken on a duplicate.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	user, err := models.NewUser(username, password)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate checks the credentials and returns the matching Principal.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials and
// cost one bcrypt comparison each.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (auth.Principal, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return auth.Principal{}, userdomain.ErrInvalidCredentials
		}
		return auth.Principal{}, fmt.Errorf("get user: %w", err)
	}
	if !user.CheckPassword(password) {
		s.log.WarnContext(ctx, "failed login", "username", username)
		return auth.Principal{}, userdomain.ErrInvalidCredentials
	}
	return auth.Principal{UserID: user.ID, Username: user.Username}, nil
}

// Principal reloads the account behind a refresh token so deleted users
// cannot mint new access tokens.
func (s *UserService) Principal(ctx context.Context, id int64) (auth.Principal, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("get user: %w", err)
	}
	return auth.Principal{UserID: user.ID, Username: user.Username}, nil
}

var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("inventory-dummy-password"), bcrypt.DefaultCost)
	return h
})
