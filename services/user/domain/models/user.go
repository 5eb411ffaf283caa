package models

import (
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	userdomain "github.com/ghuser/inventory/services/user/domain"
)

const (
	MaxUsernameLength = 150
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes = 72
)

// User is an account that can authenticate against the API.
type User struct {
	ID           int64 // assigned by the store; zero until saved
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser validates the credentials and returns an unsaved User with a
// bcrypt password hash.
func NewUser(username, password string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: username %w", userdomain.ErrInvalidUser, err)
	}
	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: password %w", userdomain.ErrInvalidUser, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &User{Username: username, PasswordHash: string(hash)}, nil
}

// ValidateUsername allows 1-150 letters, digits and @ . + - _ characters.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n == 0 {
		return errors.New("is required")
	}
	if n > MaxUsernameLength {
		return fmt.Errorf("must not exceed %d characters", MaxUsernameLength)
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '@', '.', '+', '-', '_':
			continue
		}
		return fmt.Errorf("contains invalid character %q", r)
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("must not exceed %d bytes", MaxPasswordBytes)
	}
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
