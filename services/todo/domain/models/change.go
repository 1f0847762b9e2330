package models

import (
	"time"

	"github.com/google/uuid"
)

// ChangeType names what happened to a todo.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is a notification that one of an owner's todos was written.
// Todo is nil for deletions.
type Change struct {
	Type       ChangeType
	TodoID     uuid.UUID
	OwnerID    uuid.UUID
	Todo       *Todo
	OccurredAt time.Time
}

// NewChange builds a Change for todo. Pass a nil todo only with ChangeDeleted,
// in which case ownerID and todoID identify the removed record.
func NewChange(typ ChangeType, ownerID, todoID uuid.UUID, todo *Todo) Change {
	c := Change{
		Type:       typ,
		TodoID:     todoID,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
	}
	if todo != nil {
		c.Todo = todo.Clone()
	}
	return c
}
