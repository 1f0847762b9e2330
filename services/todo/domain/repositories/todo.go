package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/todos/services/todo/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// TodoFilter narrows a list query. The zero value matches every todo of the owner.
type TodoFilter struct {
	Search    string // case-insensitive substring of Text; empty disables
	Completed *bool  // nil matches both states
}

// Matches reports whether todo satisfies f. Stores that filter in process use it;
// SQL stores express the same predicate in their WHERE clause.
func (f TodoFilter) Matches(todo *models.Todo) bool {
	if f.Completed != nil && todo.Completed != *f.Completed {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(todo.Text.String()), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// TodoRepository is the persistence interface for the Todo aggregate.
// The domain layer owns this interface; infrastructure implements it.
// Every method is scoped by owner; a todo of another owner is never returned or modified.
type TodoRepository interface {
	Save(ctx context.Context, todo *models.Todo) error

	// GetByID returns ErrTodoNotFound when id does not exist and
	// ErrTodoNotOwned when it belongs to someone other than ownerID.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Todo, error)

	// FindByOwnerID retrieves one page of the owner's todos matching filter,
	// newest first, and the total count of matches (ignoring pagination).
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, filter TodoFilter, opts QueryOpts) ([]*models.Todo, int, error)

	// Update applies patch atomically and returns the stored result.
	// An empty patch returns the current record.
	Update(ctx context.Context, ownerID, id uuid.UUID, patch models.TodoPatch) (*models.Todo, error)

	// Delete removes the todo. Returns ErrTodoNotFound if it was already gone.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// ChangeNotifier streams writes to an owner's todos. It is optional:
// stores that cannot observe their own writes simply do not implement it.
type ChangeNotifier interface {
	// Watch delivers changes for ownerID until ctx is done, then closes the channel.
	Watch(ctx context.Context, ownerID uuid.UUID) (<-chan models.Change, error)
}
