// Package redis stores user accounts next to Redis-backed todos, so a
// deployment with TODO_STORE=redis needs no relational database.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	userdomain "github.com/ghuser/todos/services/user/domain"
	"github.com/ghuser/todos/services/user/domain/models"
	"github.com/ghuser/todos/services/user/domain/repositories"
)

const keyPrefix = "users:"

var _ repositories.UserRepository = (*UserRepository)(nil)

// insertUser claims the email key and writes the account hash in one step.
// Returns 0 when the email is already registered.
var insertUser = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2], 'id', ARGV[1], 'email', ARGV[2], 'password_hash', ARGV[3], 'created_at', ARGV[4])
return 1
`)

// UserRepository implements repositories.UserRepository against Redis.
// Keys: "users:user:<id>" hash and "users:email:<email>" → id.
type UserRepository struct {
	client *redis.Client
}

// NewUserRepository returns a repository on the given client.
func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client: client}
}

func userKey(id uuid.UUID) string  { return keyPrefix + "user:" + id.String() }
func emailKey(email string) string { return keyPrefix + "email:" + models.NormalizeEmail(email) }

// Save inserts user. Returns ErrEmailTaken if the email is in use.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	ok, err := insertUser.Run(ctx, r.client,
		[]string{emailKey(user.Email), userKey(user.ID)},
		user.ID.String(),
		models.NormalizeEmail(user.Email),
		user.PasswordHash,
		user.CreatedAt.UTC().Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if ok == 0 {
		return userdomain.ErrEmailTaken
	}
	return nil
}

// GetByEmail resolves the email index and loads the account.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	raw, err := r.client.Get(ctx, emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, userdomain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt email index %q: %w", raw, err)
	}
	return r.GetByID(ctx, id)
}

// GetByID loads the account hash.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	fields, err := r.client.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(fields) == 0 {
		return nil, userdomain.ErrUserNotFound
	}
	return fromHash(fields)
}

func fromHash(h map[string]string) (*models.User, error) {
	id, err := uuid.Parse(h["id"])
	if err != nil {
		return nil, fmt.Errorf("decode user id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, h["created_at"])
	if err != nil {
		return nil, fmt.Errorf("decode user created_at %s: %w", strconv.Quote(h["created_at"]), err)
	}
	return &models.User{
		ID:           id,
		Email:        h["email"],
		PasswordHash: h["password_hash"],
		CreatedAt:    createdAt,
	}, nil
}
