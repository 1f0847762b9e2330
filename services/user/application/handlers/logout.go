package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/errhttp"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
)

// LogoutHandler handles POST /auth/logout requests.
type LogoutHandler struct {
	store sessions.Store
	log   logger.Logger
}

// NewLogoutHandler returns a LogoutHandler that expires sessions in store.
func NewLogoutHandler(store sessions.Store, log logger.Logger) *LogoutHandler {
	return &LogoutHandler{store: store, log: log}
}

// Execute ends the caller's session.
//
//	@Summary		Log out
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	MessageResponse
//	@Failure		401	{object}	ErrorResponse
//	@Security		SessionCookie
//	@Router			/auth/logout [post]
func (h *LogoutHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if err := auth.EndSession(w, r, h.store); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSONMessage(w, http.StatusOK, "Logged out")
}
