package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	userdomain "github.com/ghuser/todos/services/user/domain"
	"github.com/ghuser/todos/services/user/domain/models"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	alice := models.NewUser("alice@example.com", "hash")

	if err := repo.Save(ctx, alice); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Run("duplicate email is taken regardless of case", func(t *testing.T) {
		err := repo.Save(ctx, models.NewUser("ALICE@example.com", "other"))
		if !errors.Is(err, userdomain.ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("GetByEmail", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, " Alice@Example.com ")
		if err != nil {
			t.Fatalf("GetByEmail: %v", err)
		}
		if got.ID != alice.ID {
			t.Fatalf("expected %v, got %v", alice.ID, got.ID)
		}
	})

	t.Run("GetByID", func(t *testing.T) {
		got, err := repo.GetByID(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Email != "alice@example.com" {
			t.Fatalf("unexpected email %q", got.Email)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, userdomain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		if _, err := repo.GetByEmail(ctx, "bob@example.com"); !errors.Is(err, userdomain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
