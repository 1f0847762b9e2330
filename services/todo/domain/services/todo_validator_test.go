package services

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/todos/services/todo/domain/models"
	"github.com/ghuser/todos/services/todo/domain/repositories"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		input   models.TodoText
		wantErr bool
	}{
		{"plain text", "Buy milk", false},
		{"special chars", "Pay rent (€1,200) @ bank!", false},
		{"multi-line", "Shopping:\n- milk\n- eggs", false},
		{"tab inside", "a\tb", false},
		{"null byte", "Buy\x00milk", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateText(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTodoForCreation(t *testing.T) {
	makeTodo := func(id, ownerID uuid.UUID, text models.TodoText) *models.Todo {
		return &models.Todo{ID: id, OwnerID: ownerID, Text: text}
	}

	t.Run("nil todo returns error", func(t *testing.T) {
		if err := ValidateTodoForCreation(nil); err == nil {
			t.Fatal("expected error for nil todo")
		}
	})

	t.Run("valid todo returns nil", func(t *testing.T) {
		if err := ValidateTodoForCreation(makeTodo(uuid.New(), uuid.New(), "Buy milk")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("zero OwnerID returns error", func(t *testing.T) {
		if err := ValidateTodoForCreation(makeTodo(uuid.New(), uuid.Nil, "Buy milk")); err == nil {
			t.Fatal("expected error for zero OwnerID")
		}
	})

	t.Run("zero ID returns error", func(t *testing.T) {
		if err := ValidateTodoForCreation(makeTodo(uuid.Nil, uuid.New(), "Buy milk")); err == nil {
			t.Fatal("expected error for zero ID")
		}
	})

	t.Run("invalid text propagates error", func(t *testing.T) {
		if err := ValidateTodoForCreation(makeTodo(uuid.New(), uuid.New(), "a\x00b")); err == nil {
			t.Fatal("expected error for NUL in text")
		}
	})
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        repositories.QueryOpts
		wantErr     bool
	}{
		{"first page", 1, 10, repositories.QueryOpts{Limit: 10, Offset: 0}, false},
		{"third page of five", 3, 5, repositories.QueryOpts{Limit: 5, Offset: 10}, false},
		{"max limit", 2, 100, repositories.QueryOpts{Limit: 100, Offset: 100}, false},
		{"huge page saturates", 1 << 62, 3, repositories.QueryOpts{Limit: 3, Offset: math.MaxInt - 3}, false},
		{"max int page", math.MaxInt, 100, repositories.QueryOpts{Limit: 100, Offset: math.MaxInt - 100}, false},
		{"page zero", 0, 10, repositories.QueryOpts{}, true},
		{"limit zero", 1, 0, repositories.QueryOpts{}, true},
		{"negative limit", 1, -1, repositories.QueryOpts{}, true},
		{"limit over max", 1, 101, repositories.QueryOpts{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Paginate(tt.page, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Paginate(%d, %d) error = %v, wantErr = %v", tt.page, tt.limit, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
