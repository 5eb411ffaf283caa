package domain

import "errors"

// Sentinel errors for the user domain. Use errors.Is() to check these.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates another user already has this username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidUser indicates the username or password violates domain constraints.
	ErrInvalidUser = errors.New("invalid user")

	// ErrInvalidCredentials is returned by login for an unknown username or a
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
