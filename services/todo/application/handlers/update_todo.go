package handlers

import (
	"net/http"

	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/errhttp"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
	pkgvalidator "github.com/ghuser/todos/pkg/validator"
	appsvcs "github.com/ghuser/todos/services/todo/application/services"
	tododomain "github.com/ghuser/todos/services/todo/domain"
)

// UpdateTodoRequest is the request body for PUT /todos/{id}.
// Absent (or null) fields are left unchanged.
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty"      validate:"omitnil,notblank" example:"Buy oat milk"`
	Completed *bool   `json:"completed,omitempty" example:"true"`
} // @name UpdateTodoRequest

// UpdateTodoHandler handles PUT /todos/{id} requests.
type UpdateTodoHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewUpdateTodoHandler returns an UpdateTodoHandler backed by the given services.
func NewUpdateTodoHandler(svc *appsvcs.Services, log logger.Logger) *UpdateTodoHandler {
	return &UpdateTodoHandler{svc: svc, log: log}
}

// Execute partially updates one of the caller's todos.
//
//	@Summary		Update todo
//	@Description	Applies the fields present in the body; omitted fields keep their value
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Todo ID"	format(uuid)
//	@Param			request	body		UpdateTodoRequest	true	"Fields to change"
//	@Success		200		{object}	TodoResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		SessionCookie
//	@Router			/todos/{id} [put]
func (h *UpdateTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	req, ok := pkgvalidator.ValidateRequest[UpdateTodoRequest](w, r)
	if !ok {
		return
	}

	todo, err := h.svc.Todo.Update(r.Context(), ownerID, id, appsvcs.UpdateInput{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTodoResponse(todo))
}
