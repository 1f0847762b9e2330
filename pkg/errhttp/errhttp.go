// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapError for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
	"github.com/ghuser/todos/pkg/telemetry"
	tododomain "github.com/ghuser/todos/services/todo/domain"
	userdomain "github.com/ghuser/todos/services/user/domain"
)

const internalErrorMessage = "internal server error"

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Unrecognized errors become a 500 with a generic message; the cause is only logged.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, message := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		log.ErrorContext(r.Context(), "request failed", "status", status, "error", err)
		telemetry.CaptureError(r.Context(), err, map[string]string{
			"http.method": r.Method,
			"http.route":  routePattern(r),
		})
	case errors.Is(err, tododomain.ErrTodoNotOwned):
		log.DebugContext(r.Context(), "todo access denied", "error", err)
	}
	httpx.JSONError(w, status, message)
}

// routePattern returns the chi route template, so ids never become tag values.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		return rc.RoutePattern()
	}
	return "unmatched"
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, tododomain.ErrTodoNotFound):
		return http.StatusNotFound, tododomain.ErrTodoNotFound.Error() // 404, also covers ErrTodoNotOwned
	case errors.Is(err, userdomain.ErrUserNotFound):
		return http.StatusNotFound, userdomain.ErrUserNotFound.Error() // 404
	case errors.Is(err, tododomain.ErrInvalidTodoText),
		errors.Is(err, tododomain.ErrInvalidQuery):
		return http.StatusBadRequest, err.Error() // 400
	case errors.Is(err, userdomain.ErrEmailTaken):
		return http.StatusConflict, err.Error() // 409
	case errors.Is(err, userdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, userdomain.ErrInvalidCredentials.Error() // 401
	case errors.Is(err, auth.ErrUserIDNotFound):
		return http.StatusUnauthorized, "authentication required" // 401
	case errors.Is(err, tododomain.ErrChangesUnsupported):
		return http.StatusNotImplemented, err.Error() // 501
	default:
		return http.StatusInternalServerError, internalErrorMessage // 500
	}
}
