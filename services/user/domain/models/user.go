package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account that owns todos.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string // Argon2id PHC string; never serialized
	CreatedAt    time.Time
}

// NewUser constructs a User with generated ID, normalized email and current timestamp.
func NewUser(email, passwordHash string) *User {
	return &User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
