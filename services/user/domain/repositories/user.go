package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/todos/services/user/domain/models"
)

// UserRepository is the persistence interface for the User aggregate.
type UserRepository interface {
	// Save inserts a new user. Returns ErrEmailTaken if the email is in use.
	Save(ctx context.Context, user *models.User) error

	// GetByEmail looks up a normalized email. Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
