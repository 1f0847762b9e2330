package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/errhttp"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
	pkgvalidator "github.com/ghuser/todos/pkg/validator"
	appsvcs "github.com/ghuser/todos/services/user/application/services"
)

// LoginHandler handles POST /auth/login requests.
type LoginHandler struct {
	svc   *appsvcs.Services
	store sessions.Store
	log   logger.Logger
}

// NewLoginHandler returns a LoginHandler that writes sessions to store.
func NewLoginHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger) *LoginHandler {
	return &LoginHandler{svc: svc, store: store, log: log}
}

// Execute verifies credentials and starts a session.
//
//	@Summary		Log in
//	@Description	Sets the session cookie used by every /todos route
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Email and password"
//	@Success		200		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/auth/login [post]
func (h *LoginHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CredentialsRequest](w, r)
	if !ok {
		return
	}

	user, err := h.svc.User.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	if err := auth.StartSession(w, r, h.store, user.ID); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "user logged in", "user_id", user.ID)
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}
