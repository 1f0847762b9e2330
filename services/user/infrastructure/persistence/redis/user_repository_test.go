package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	userdomain "github.com/ghuser/todos/services/user/domain"
	"github.com/ghuser/todos/services/user/domain/models"
)

func TestFromHash(t *testing.T) {
	id := uuid.New()
	created := time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)

	got, err := fromHash(map[string]string{
		"id":            id.String(),
		"email":         "alice@example.com",
		"password_hash": "$argon2id$...",
		"created_at":    created.Format(time.RFC3339Nano),
	})
	if err != nil {
		t.Fatalf("fromHash: %v", err)
	}
	if got.ID != id || got.Email != "alice@example.com" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user %+v", got)
	}

	if _, err := fromHash(map[string]string{"id": "nope"}); err == nil {
		t.Fatal("expected error for corrupt id")
	}
	if _, err := fromHash(map[string]string{"id": id.String(), "created_at": "yesterday"}); err == nil {
		t.Fatal("expected error for corrupt timestamp")
	}
}

func TestEmailKeyIsNormalized(t *testing.T) {
	if emailKey(" Alice@Example.COM ") != emailKey("alice@example.com") {
		t.Fatal("email keys must be case and whitespace insensitive")
	}
}

// Integration tests: skipped unless REDIS_URL is set.
func TestUserRepositoryIntegration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close() //nolint:errcheck

	ctx := context.Background()
	repo := NewUserRepository(client)
	user := models.NewUser("it-"+uuid.NewString()+"@example.com", "hash")
	t.Cleanup(func() { client.Del(ctx, userKey(user.ID), emailKey(user.Email)) })

	if err := repo.Save(ctx, user); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dup := models.NewUser(user.Email, "other")
	if err := repo.Save(ctx, dup); !errors.Is(err, userdomain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if n := client.Exists(ctx, userKey(dup.ID)).Val(); n != 0 {
		t.Fatal("rejected user must not leave a hash behind")
	}

	got, err := repo.GetByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != user.ID || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user %+v", got)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, userdomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody-"+uuid.NewString()+"@example.com"); !errors.Is(err, userdomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
