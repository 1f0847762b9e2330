package handlers

import (
	"net/http"
	"path"

	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/errhttp"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
	pkgvalidator "github.com/ghuser/todos/pkg/validator"
	appsvcs "github.com/ghuser/todos/services/todo/application/services"
)

// CreateTodoRequest is the request body for POST /todos.
type CreateTodoRequest struct {
	Text string `json:"text" validate:"required,notblank" example:"Buy milk"`
} // @name CreateTodoRequest

// CreateTodoHandler handles POST /todos requests.
type CreateTodoHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewCreateTodoHandler returns a CreateTodoHandler backed by the given services.
func NewCreateTodoHandler(svc *appsvcs.Services, log logger.Logger) *CreateTodoHandler {
	return &CreateTodoHandler{svc: svc, log: log}
}

// Execute creates a new todo owned by the caller.
//
//	@Summary		Create todo
//	@Description	Creates an incomplete todo owned by the caller; surrounding whitespace is trimmed
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateTodoRequest	true	"Todo creation request"
//	@Success		201		{object}	TodoResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		SessionCookie
//	@Router			/todos [post]
func (h *CreateTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateTodoRequest](w, r)
	if !ok {
		return
	}

	todo, err := h.svc.Todo.Create(r.Context(), ownerID, req.Text)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "todo created", "todo_id", todo.ID)
	httpx.Created(w, path.Join(r.URL.Path, todo.ID.String()), toTodoResponse(todo))
}
