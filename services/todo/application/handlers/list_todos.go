package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/errhttp"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
	pkgvalidator "github.com/ghuser/todos/pkg/validator"
	appsvcs "github.com/ghuser/todos/services/todo/application/services"
)

// listTodosQuery holds the parsed query string of GET /todos.
type listTodosQuery struct {
	Page   *int   `json:"page"   validate:"omitnil,gte=1"`
	Limit  *int   `json:"limit"  validate:"omitnil,gte=1,lte=100"`
	Search string `json:"search" validate:"max=1000"`
	Status string `json:"status" validate:"omitempty,oneof=completed incomplete"`
}

// ListTodosHandler handles GET /todos requests.
type ListTodosHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewListTodosHandler returns a ListTodosHandler backed by the given services.
func NewListTodosHandler(svc *appsvcs.Services, log logger.Logger) *ListTodosHandler {
	return &ListTodosHandler{svc: svc, log: log}
}

// Execute lists the caller's todos.
//
//	@Summary		List todos
//	@Description	Returns one page of the caller's todos, newest first, with the total count of the filtered set
//	@Tags			todos
//	@Produce		json
//	@Param			page	query		int		false	"Page number (1-based)"	default(1)
//	@Param			limit	query		int		false	"Page size (1-100)"		default(10)
//	@Param			search	query		string	false	"Case-insensitive substring of the todo text"
//	@Param			status	query		string	false	"Completion filter"	Enums(completed, incomplete)
//	@Success		200		{object}	ListTodosResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		SessionCookie
//	@Router			/todos [get]
func (h *ListTodosHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	q, fields := parseListQuery(r)
	if len(fields) > 0 {
		httpx.JSONFieldErrors(w, fields)
		return
	}
	if err := pkgvalidator.Validate(&q); err != nil {
		pkgvalidator.WriteValidationError(w, err)
		return
	}

	page, err := h.svc.Todo.List(r.Context(), ownerID, appsvcs.ListQuery{
		Page:   deref(q.Page),
		Limit:  deref(q.Limit),
		Search: q.Search,
		Status: q.Status,
	})
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	resp := ListTodosResponse{
		Data:  make([]TodoResponse, 0, len(page.Items)),
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	}
	for _, t := range page.Items {
		resp.Data = append(resp.Data, toTodoResponse(t))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// parseListQuery reads the query string. Absent or empty numbers stay nil so
// the service applies its defaults; a present value must be a number in range.
func parseListQuery(r *http.Request) (listTodosQuery, map[string]string) {
	v := r.URL.Query()
	q := listTodosQuery{Search: v.Get("search"), Status: v.Get("status")}
	fields := map[string]string{}

	for name, dst := range map[string]**int{"page": &q.Page, "limit": &q.Limit} {
		raw := v.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[name] = "Must be a numeric value"
			continue
		}
		*dst = &n
	}
	return q, fields
}

func deref(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
