package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ghuser/todos/pkg/app"
	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/services/user/application/handlers"
	appsvcs "github.com/ghuser/todos/services/user/application/services"
)

// credentialAttemptsPerMinute caps register and login calls per client IP.
const credentialAttemptsPerMinute = 10

// UserRoutes registers account and session endpoints on the provided chi router.
func UserRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a), a)
}

// Mount registers the /auth endpoints for an already wired service container.
func Mount(r chi.Router, svcs *appsvcs.Services, a *app.Application) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(credentialAttemptsPerMinute, time.Minute))
			r.Post("/register", handlers.NewRegisterHandler(svcs, a.Logger).Execute)
			r.Post("/login", handlers.NewLoginHandler(svcs, a.SessionStore, a.Logger).Execute)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(a.SessionStore, a.Logger))
			r.Post("/logout", handlers.NewLogoutHandler(a.SessionStore, a.Logger).Execute)
			r.Get("/me", handlers.NewMeHandler(svcs, a.Logger).Execute)
		})
	})
}
