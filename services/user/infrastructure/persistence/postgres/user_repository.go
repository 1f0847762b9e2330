package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/todos/pkg/database"
	userdomain "github.com/ghuser/todos/services/user/domain"
	"github.com/ghuser/todos/services/user/domain/models"
	"github.com/ghuser/todos/services/user/domain/repositories"
)

var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db *database.Database
}

// NewUserRepository returns a UserRepository backed by the given connection pool.
func NewUserRepository(db *database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts a user. Returns ErrEmailTaken on the unique email index.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	_, err := r.db.DB().ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if database.IsCode(err, database.CodeUniqueViolation) {
			return userdomain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail looks a user up by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)`, email)
}

// GetByID looks a user up by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.get(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.DB().QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userdomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
