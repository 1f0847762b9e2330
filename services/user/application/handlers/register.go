package handlers

import (
	"net/http"

	"github.com/ghuser/todos/pkg/errhttp"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
	pkgvalidator "github.com/ghuser/todos/pkg/validator"
	appsvcs "github.com/ghuser/todos/services/user/application/services"
)

// RegisterHandler handles POST /auth/register requests.
type RegisterHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewRegisterHandler returns a RegisterHandler backed by the given services.
func NewRegisterHandler(svc *appsvcs.Services, log logger.Logger) *RegisterHandler {
	return &RegisterHandler{svc: svc, log: log}
}

// Execute creates an account. It does not sign the new user in.
//
//	@Summary		Register
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Email and password (6-72 characters)"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/auth/register [post]
func (h *RegisterHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CredentialsRequest](w, r)
	if !ok {
		return
	}

	user, err := h.svc.User.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(user))
}
