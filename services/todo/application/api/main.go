package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todos/pkg/app"
	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/services/todo/application/handlers"
	appsvcs "github.com/ghuser/todos/services/todo/application/services"
)

// TodoRoutes registers todo endpoints on the provided chi router.
func TodoRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a), a)
}

// Mount registers the todo endpoints for an already wired service container.
// Every route sits behind RequireAuth, so no handler runs without a session.
func Mount(r chi.Router, svcs *appsvcs.Services, a *app.Application) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(a.SessionStore, a.Logger))
		r.Route("/todos", func(r chi.Router) {
			r.Get("/", handlers.NewListTodosHandler(svcs, a.Logger).Execute)
			r.Post("/", handlers.NewCreateTodoHandler(svcs, a.Logger).Execute)
			r.Get("/events", handlers.NewWatchTodosHandler(svcs, a.Logger).Execute)
			r.Get("/{id}", handlers.NewGetTodoHandler(svcs, a.Logger).Execute)
			r.Put("/{id}", handlers.NewUpdateTodoHandler(svcs, a.Logger).Execute)
			r.Delete("/{id}", handlers.NewDeleteTodoHandler(svcs, a.Logger).Execute)
		})
	})
}
