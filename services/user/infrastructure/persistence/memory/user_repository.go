// Package memory is a map-backed UserRepository for tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	userdomain "github.com/ghuser/todos/services/user/domain"
	"github.com/ghuser/todos/services/user/domain/models"
	"github.com/ghuser/todos/services/user/domain/repositories"
)

var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository keeps users in maps guarded by a RWMutex.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

// NewUserRepository returns an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Save stores user unless its email is already registered.
func (r *UserRepository) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := models.NormalizeEmail(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return userdomain.ErrEmailTaken
	}
	r.byID[user.ID] = *user
	r.byEmail[email] = user.ID
	return nil
}

// GetByEmail returns a copy of the user with the given email.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

// GetByID returns a copy of the user with the given ID.
func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	return &u, nil
}
