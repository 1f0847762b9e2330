package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/logger"
	userdomain "github.com/ghuser/todos/services/user/domain"
	"github.com/ghuser/todos/services/user/domain/models"
	"github.com/ghuser/todos/services/user/domain/repositories"
)

// UserService registers accounts and checks credentials.
type UserService struct {
	repo repositories.UserRepository
	log  logger.Logger

	// decoy is verified against when the email is unknown, so both failure
	// paths of Login cost one Argon2id derivation.
	decoy func() string
}

// NewUserService returns a UserService backed by repo.
func NewUserService(repo repositories.UserRepository, log logger.Logger) *UserService {
	return &UserService{
		repo: repo,
		log:  log,
		decoy: sync.OnceValue(func() string {
			h, err := auth.HashPassword(uuid.NewString())
			if err != nil {
				log.Warn("decoy password hash unavailable", "error", err)
			}
			return h
		}),
	}
}

// Register creates an account. Returns ErrEmailTaken if the email is in use.
// Email syntax and password length are checked by the transport layer.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.NewUser(email, hash)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login returns the account matching email and password.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, models.NormalizeEmail(email))
	switch {
	case errors.Is(err, userdomain.ErrUserNotFound):
		_, _ = auth.VerifyPassword(password, s.decoy())
		return nil, userdomain.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password for %s: %w", user.ID, err)
	}
	if !ok {
		s.log.DebugContext(ctx, "password mismatch", "user_id", user.ID)
		return nil, userdomain.ErrInvalidCredentials
	}
	return user, nil
}

// Me returns the account behind an authenticated session.
func (s *UserService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
