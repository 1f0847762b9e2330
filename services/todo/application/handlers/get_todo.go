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

// GetTodoHandler handles GET /todos/{id} requests.
type GetTodoHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewGetTodoHandler returns a GetTodoHandler backed by the given services.
func NewGetTodoHandler(svc *appsvcs.Services, log logger.Logger) *GetTodoHandler {
	return &GetTodoHandler{svc: svc, log: log}
}

// Execute returns one of the caller's todos.
//
//	@Summary		Get todo
//	@Tags			todos
//	@Produce		json
//	@Param			id	path		string	true	"Todo ID"	format(uuid)
//	@Success		200	{object}	TodoResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		SessionCookie
//	@Router			/todos/{id} [get]
func (h *GetTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	todo, err := h.svc.Todo.GetByID(r.Context(), ownerID, id)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTodoResponse(todo))
}
