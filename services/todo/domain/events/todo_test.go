package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/todos/services/todo/domain/events"
	"github.com/ghuser/todos/services/todo/domain/models"
)

func TestNewTodoEvent_SnapshotsTodo(t *testing.T) {
	created := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	todo := &models.Todo{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Text:      "Buy milk",
		Completed: true,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
	}

	evt := events.NewTodoEvent(todo.OwnerID, todo.ID, todo, todo.UpdatedAt)
	if evt.EventID == uuid.Nil {
		t.Fatal("expected generated EventID")
	}
	if evt.Version != 1 {
		t.Errorf("Version: got %d, want 1", evt.Version)
	}

	got := evt.Todo()
	if got == nil {
		t.Fatal("expected todo state on non-delete event")
	}
	if *got != *todo {
		t.Errorf("round-tripped todo mismatch: got %+v, want %+v", got, todo)
	}
}

func TestNewTodoEvent_DeleteHasNoState(t *testing.T) {
	ownerID, todoID := uuid.New(), uuid.New()
	evt := events.NewTodoEvent(ownerID, todoID, nil, time.Now())

	if evt.Todo() != nil {
		t.Fatal("delete event must not carry todo state")
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}
	for _, field := range []string{"text", "created_at", "updated_at"} {
		if _, ok := raw[field]; ok {
			t.Errorf("unexpected JSON field %q in delete event: %s", field, data)
		}
	}
}

func TestTodoEvent_JSONFieldNames(t *testing.T) {
	todo := models.NewTodo(uuid.New(), "Buy milk")
	data, err := json.Marshal(events.NewTodoEvent(todo.OwnerID, todo.ID, todo, todo.CreatedAt))
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}

	for _, field := range []string{"event_id", "version", "todo_id", "owner_id", "text", "completed", "created_at", "updated_at", "occurred_at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected JSON field %q not found in: %s", field, data)
		}
	}
}

func TestChangeType(t *testing.T) {
	tests := []struct {
		topic  string
		want   models.ChangeType
		wantOK bool
	}{
		{events.TopicTodoCreated, models.ChangeCreated, true},
		{events.TopicTodoUpdated, models.ChangeUpdated, true},
		{events.TopicTodoDeleted, models.ChangeDeleted, true},
		{"todo.archived", "", false},
	}
	for _, tt := range tests {
		got, ok := events.ChangeType(tt.topic)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ChangeType(%q) = %q, %v; want %q, %v", tt.topic, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTodoEvent_Change(t *testing.T) {
	todo := models.NewTodo(uuid.New(), "Buy milk")
	evt := events.NewTodoEvent(todo.OwnerID, todo.ID, todo, todo.CreatedAt)

	c := evt.Change(models.ChangeCreated)
	if c.Type != models.ChangeCreated || c.TodoID != todo.ID || c.OwnerID != todo.OwnerID {
		t.Fatalf("unexpected change: %+v", c)
	}
	if c.Todo == nil || c.Todo.Text != "Buy milk" {
		t.Fatalf("expected todo snapshot in change, got %+v", c.Todo)
	}
}
