package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/todos/services/todo/domain/models"
)

// Watermill topics published by the todo repository.
const (
	TopicTodoCreated = "todo.created"
	TopicTodoUpdated = "todo.updated"
	TopicTodoDeleted = "todo.deleted"
)

// Topics lists every todo topic, in the order subscribers should register them.
var Topics = []string{TopicTodoCreated, TopicTodoUpdated, TopicTodoDeleted}

// TodoEvent is published after a todo is created, updated or deleted.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicTodoCreated).
// Text, Completed, CreatedAt and UpdatedAt carry the state after the write and
// are zero for deletions.
type TodoEvent struct {
	EventID    uuid.UUID  `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int        `json:"version"`  // Schema version; increment on breaking changes
	TodoID     uuid.UUID  `json:"todo_id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Text       string     `json:"text,omitempty"`
	Completed  bool       `json:"completed"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewTodoEvent snapshots todo for publishing. Pass nil todo with the deleted
// topic; ownerID and todoID then identify the removed record.
func NewTodoEvent(ownerID, todoID uuid.UUID, todo *models.Todo, occurredAt time.Time) TodoEvent {
	evt := TodoEvent{
		EventID:    uuid.New(),
		Version:    1,
		TodoID:     todoID,
		OwnerID:    ownerID,
		OccurredAt: occurredAt.UTC(),
	}
	if todo != nil {
		createdAt, updatedAt := todo.CreatedAt, todo.UpdatedAt
		evt.Text = todo.Text.String()
		evt.Completed = todo.Completed
		evt.CreatedAt = &createdAt
		evt.UpdatedAt = &updatedAt
	}
	return evt
}

// Todo rebuilds the post-write state carried by the event, or nil for deletions.
func (e TodoEvent) Todo() *models.Todo {
	if e.CreatedAt == nil {
		return nil
	}
	t := &models.Todo{
		ID:        e.TodoID,
		OwnerID:   e.OwnerID,
		Text:      models.TodoText(e.Text),
		Completed: e.Completed,
		CreatedAt: *e.CreatedAt,
	}
	if e.UpdatedAt != nil {
		t.UpdatedAt = *e.UpdatedAt
	}
	return t
}

// ChangeType maps a topic to the change notification clients receive.
func ChangeType(topic string) (models.ChangeType, bool) {
	switch topic {
	case TopicTodoCreated:
		return models.ChangeCreated, true
	case TopicTodoUpdated:
		return models.ChangeUpdated, true
	case TopicTodoDeleted:
		return models.ChangeDeleted, true
	default:
		return "", false
	}
}

// Change converts the event into a change notification of the given type.
func (e TodoEvent) Change(typ models.ChangeType) models.Change {
	return models.Change{
		Type:       typ,
		TodoID:     e.TodoID,
		OwnerID:    e.OwnerID,
		Todo:       e.Todo(),
		OccurredAt: e.OccurredAt,
	}
}
