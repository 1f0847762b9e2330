package handlers

import (
	"net/http"

	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/errhttp"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
	appsvcs "github.com/ghuser/todos/services/user/application/services"
)

// MeHandler handles GET /auth/me requests.
type MeHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewMeHandler returns a MeHandler backed by the given services.
func NewMeHandler(svc *appsvcs.Services, log logger.Logger) *MeHandler {
	return &MeHandler{svc: svc, log: log}
}

// Execute returns the signed-in account.
//
//	@Summary		Current user
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		SessionCookie
//	@Router			/auth/me [get]
func (h *MeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	user, err := h.svc.User.Me(r.Context(), userID)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}
