package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"1.0.0"}`))
		})

		// Routing core
		r.Post("/messages", h.ProcessMessage)
		r.Post("/intents/analyze", h.AnalyzeIntent)
		r.Post("/tasks/execute", h.ExecuteTask)

		// Task history
		r.Get("/tasks/{taskID}", h.GetTask)
		r.Get("/users/{userID}/tasks", h.ListUserTasks)
		r.Get("/users/{userID}/tasks/stats", h.UserTaskStats)

		// Catalogs
		r.Get("/clones", h.ListClones)
		r.Get("/connectors", h.ListConnectors)

		// Connector accounts
		r.Get("/users/{userID}/accounts", h.ListAccounts)
		r.Put("/users/{userID}/accounts/{platform}", h.ConnectAccount)
		r.Delete("/users/{userID}/accounts/{platform}", h.DisconnectAccount)
	})
}
