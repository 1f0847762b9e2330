package domain

import "errors"

// Sentinel errors for the user domain. Use errors.Is() to check these.
var (
	// ErrUserNotFound indicates no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates an account with the same email already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
