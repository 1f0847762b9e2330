package handlers

import (
	"net/http"

	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/errhttp"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
	appsvcs "github.com/ghuser/todos/services/todo/application/services"
	tododomain "github.com/ghuser/todos/services/todo/domain"
)

// DeleteTodoHandler handles DELETE /todos/{id} requests.
type DeleteTodoHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewDeleteTodoHandler returns a DeleteTodoHandler backed by the given services.
func NewDeleteTodoHandler(svc *appsvcs.Services, log logger.Logger) *DeleteTodoHandler {
	return &DeleteTodoHandler{svc: svc, log: log}
}

// Execute permanently deletes one of the caller's todos.
//
//	@Summary		Delete todo
//	@Tags			todos
//	@Produce		json
//	@Param			id	path		string	true	"Todo ID"	format(uuid)
//	@Success		200	{object}	MessageResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		SessionCookie
//	@Router			/todos/{id} [delete]
func (h *DeleteTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	id, ok := todoIDParam(r)
	if !ok {
		errhttp.WriteError(w, r, h.log, tododomain.ErrTodoNotFound)
		return
	}

	if err := h.svc.Todo.Delete(r.Context(), ownerID, id); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "todo deleted", "todo_id", id)
	httpx.JSONMessage(w, http.StatusOK, "Todo deleted successfully")
}
