package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTodo(t *testing.T) {
	ownerID := uuid.New()
	text := TodoText("Buy milk")

	t.Run("returns todo with non-zero ID", func(t *testing.T) {
		todo := NewTodo(ownerID, text)
		if todo.ID == uuid.Nil {
			t.Fatal("expected non-zero UUID for ID")
		}
	})

	t.Run("sets owner and text", func(t *testing.T) {
		todo := NewTodo(ownerID, text)
		if todo.OwnerID != ownerID {
			t.Fatalf("expected OwnerID %v, got %v", ownerID, todo.OwnerID)
		}
		if todo.Text != text {
			t.Fatalf("expected Text %q, got %q", text, todo.Text)
		}
	})

	t.Run("starts incomplete", func(t *testing.T) {
		if NewTodo(ownerID, text).Completed {
			t.Fatal("expected new todo to be incomplete")
		}
	})

	t.Run("sets CreatedAt to approximately now UTC", func(t *testing.T) {
		before := time.Now().UTC()
		todo := NewTodo(ownerID, text)
		after := time.Now().UTC()
		if todo.CreatedAt.Before(before) || todo.CreatedAt.After(after) {
			t.Fatalf("CreatedAt %v not between %v and %v", todo.CreatedAt, before, after)
		}
		if !todo.UpdatedAt.Equal(todo.CreatedAt) {
			t.Fatalf("expected UpdatedAt == CreatedAt, got %v and %v", todo.UpdatedAt, todo.CreatedAt)
		}
	})

	t.Run("generates unique IDs on each call", func(t *testing.T) {
		if NewTodo(ownerID, text).ID == NewTodo(ownerID, text).ID {
			t.Fatal("expected unique IDs, got identical")
		}
	})
}

func TestTodo_Apply(t *testing.T) {
	created := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)
	newText := TodoText("Walk dog")
	done := true

	base := func() *Todo {
		return &Todo{ID: uuid.New(), OwnerID: uuid.New(), Text: "Buy milk", CreatedAt: created, UpdatedAt: created}
	}

	t.Run("text only leaves completed unchanged", func(t *testing.T) {
		todo := base()
		todo.Apply(TodoPatch{Text: &newText}, later)
		if todo.Text != newText || todo.Completed {
			t.Fatalf("unexpected todo after patch: %+v", todo)
		}
		if !todo.UpdatedAt.Equal(later) {
			t.Fatalf("expected UpdatedAt %v, got %v", later, todo.UpdatedAt)
		}
	})

	t.Run("completed only leaves text unchanged", func(t *testing.T) {
		todo := base()
		todo.Apply(TodoPatch{Completed: &done}, later)
		if todo.Text != "Buy milk" || !todo.Completed {
			t.Fatalf("unexpected todo after patch: %+v", todo)
		}
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		todo := base()
		todo.Apply(TodoPatch{}, later)
		if !todo.UpdatedAt.Equal(created) {
			t.Fatalf("expected UpdatedAt unchanged, got %v", todo.UpdatedAt)
		}
	})

	t.Run("never touches identity or creation time", func(t *testing.T) {
		todo := base()
		id, owner := todo.ID, todo.OwnerID
		todo.Apply(TodoPatch{Text: &newText, Completed: &done}, later)
		if todo.ID != id || todo.OwnerID != owner || !todo.CreatedAt.Equal(created) {
			t.Fatalf("immutable fields changed: %+v", todo)
		}
	})
}

func TestTodo_CloneIsIndependent(t *testing.T) {
	todo := NewTodo(uuid.New(), "Buy milk")
	c := todo.Clone()
	c.Text = "changed"
	if todo.Text != "Buy milk" {
		t.Fatal("mutating the clone changed the original")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in            string
		want          Status
		wantCompleted *bool
		wantErr       bool
	}{
		{"", StatusAll, nil, false},
		{"completed", StatusCompleted, ptr(true), false},
		{"incomplete", StatusIncomplete, ptr(false), false},
		{"done", "", nil, true},
		{"COMPLETED", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr = %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			c := got.Completed()
			if (c == nil) != (tt.wantCompleted == nil) || (c != nil && *c != *tt.wantCompleted) {
				t.Fatalf("Completed() = %v, want %v", c, tt.wantCompleted)
			}
		})
	}
}

func TestNewChange_CopiesTodo(t *testing.T) {
	todo := NewTodo(uuid.New(), "Buy milk")
	c := NewChange(ChangeUpdated, todo.OwnerID, todo.ID, todo)
	todo.Completed = true
	if c.Todo.Completed {
		t.Fatal("change must carry a snapshot, not a live pointer")
	}

	d := NewChange(ChangeDeleted, todo.OwnerID, todo.ID, nil)
	if d.Todo != nil {
		t.Fatal("deleted change must not carry a todo")
	}
}

func ptr[T any](v T) *T { return &v }
