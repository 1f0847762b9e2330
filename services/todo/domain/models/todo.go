package models

import (
	"time"

	"github.com/google/uuid"
)

// Todo is the core aggregate for this bounded context.
type Todo struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID // owner scope, always filter by this in queries
	Text      TodoText
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTodo constructs an incomplete Todo with generated ID and current timestamp.
func NewTodo(ownerID uuid.UUID, text TodoText) *Todo {
	now := time.Now().UTC()
	return &Todo{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TodoPatch is a partial update. Nil fields are left unchanged.
type TodoPatch struct {
	Text      *TodoText
	Completed *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// Apply copies the present fields of p onto t and refreshes UpdatedAt.
// An empty patch leaves t untouched.
func (t *Todo) Apply(p TodoPatch, now time.Time) {
	if p.IsEmpty() {
		return
	}
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = now.UTC()
}

// Clone returns a copy of t that shares no state with it.
func (t *Todo) Clone() *Todo {
	c := *t
	return &c
}
