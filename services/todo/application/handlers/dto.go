package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/todos/services/todo/domain/models"
)

// TodoResponse is the JSON shape of a single todo.
type TodoResponse struct {
	ID        uuid.UUID `json:"id"         example:"123e4567-e89b-12d3-a456-426614174000"`
	Text      string    `json:"text"       example:"Buy milk"`
	Completed bool      `json:"completed"  example:"false"`
	OwnerID   uuid.UUID `json:"owner_id"   example:"550e8400-e29b-41d4-a716-446655440000"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
} // @name TodoResponse

// ListTodosResponse is one page of todos plus the size of the filtered set.
type ListTodosResponse struct {
	Data  []TodoResponse `json:"data"`
	Total int            `json:"total" example:"12"`
	Page  int            `json:"page"  example:"1"`
	Limit int            `json:"limit" example:"10"`
} // @name ListTodosResponse

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message" example:"Todo deleted successfully"`
} // @name MessageResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"todo not found"`
} // @name ErrorResponse

// ValidationErrorResponse is returned when a request fails field validation.
type ValidationErrorResponse struct {
	Error  string            `json:"error"  example:"Validation failed"`
	Fields map[string]string `json:"fields"`
} // @name ValidationErrorResponse

func toTodoResponse(t *models.Todo) TodoResponse {
	return TodoResponse{
		ID:        t.ID,
		Text:      t.Text.String(),
		Completed: t.Completed,
		OwnerID:   t.OwnerID,
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

// todoIDParam parses the {id} path segment. A malformed id can never name an
// existing todo, so callers answer it with the same 404 as a missing one.
func todoIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
