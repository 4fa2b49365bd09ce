// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/planfold/planfold/internal/adapters/http/handlers"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given. The auth middleware is
// mounted on the /api/v1 group only, keeping the health endpoints reachable
// by unauthenticated probes; nil disables it.
func NewRouter(
	projectHandler *handlers.ProjectHandler,
	todoHandler *handlers.TodoHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
	auth func(http.Handler) http.Handler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix, never behind auth).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}
		// Profile of the authenticated user.
		r.Get("/me", userHandler.GetMe)
		r.Patch("/me", userHandler.UpdateMe)

		// Project operations.
		r.Get("/projects", projectHandler.ListProjects)
		r.Post("/projects", projectHandler.CreateProject)
		r.Get("/projects/watch", projectHandler.WatchProjects)
		r.Put("/projects/positions", projectHandler.UpdatePositions)
		r.Get("/projects/{id}", projectHandler.GetProject)
		r.Patch("/projects/{id}", projectHandler.UpdateProject)
		r.Delete("/projects/{id}", projectHandler.DeleteProject)
		r.Put("/projects/{id}/position", projectHandler.UpdatePosition)

		// Todos scoped to a project, plus flat todo operations.
		r.Get("/projects/{projectId}/todos", todoHandler.ListProjectTodos)
		r.Post("/todos", todoHandler.CreateTodo)
		r.Get("/todos/{id}", todoHandler.GetTodo)
		r.Patch("/todos/{id}", todoHandler.UpdateTodo)
		r.Delete("/todos/{id}", todoHandler.DeleteTodo)
	})

	return r
}
