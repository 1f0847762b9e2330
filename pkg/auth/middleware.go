package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
)

const sessionName = "todos_session"
const sessionUserIDKey = "user_id"

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, extracts the user ID, and injects it into the request context.
// Returns 401 Unauthorized if the session is missing, invalid, or lacks a valid user_id.
// No downstream handler (and therefore no store) runs for unauthenticated requests.
//
// After this middleware, handlers can safely call auth.UserIDFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			userIDStr, ok := session.Values[sessionUserIDKey].(string)
			if !ok || userIDStr == "" {
				log.DebugContext(r.Context(), "session missing user_id")
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				log.WarnContext(r.Context(), "invalid user_id in session", "user_id", userIDStr, "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid session data")
				return
			}

			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionRevoker is implemented by stores that keep session data server-side.
type sessionRevoker interface {
	Revoke(ctx context.Context, session *sessions.Session) error
}

// StartSession binds userID to a freshly issued session and writes the cookie.
// Called by the login handler after the password has been verified. Any session
// the request already carried is revoked, so a cookie planted before login never
// becomes authenticated.
func StartSession(w http.ResponseWriter, r *http.Request, store sessions.Store, userID uuid.UUID) error {
	// A stale or tampered cookie yields an error alongside a usable fresh session.
	session, err := store.Get(r, sessionName)
	if session == nil {
		return fmt.Errorf("get session: %w", err)
	}
	if rv, ok := store.(sessionRevoker); ok && session.ID != "" {
		if err := rv.Revoke(r.Context(), session); err != nil {
			return fmt.Errorf("revoke previous session: %w", err)
		}
	}
	session.ID = ""
	session.IsNew = true
	session.Values = map[any]any{sessionUserIDKey: userID.String()}
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// EndSession expires the caller's session and its server-side data.
func EndSession(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, sessionName)
	if session == nil {
		return fmt.Errorf("get session: %w", err)
	}
	delete(session.Values, sessionUserIDKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	return nil
}
