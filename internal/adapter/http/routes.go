package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Get("/auth/me", h.Me)

		// Tasks
		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks/{id}", h.GetTask)
		r.Patch("/tasks/{id}", h.UpdateTask)
		r.Post("/tasks/{id}/complete", h.CompleteTask)
		r.Delete("/tasks/{id}", h.DeleteTask)

		// Chat
		r.Post("/chat", h.SendChatMessage)
		r.Get("/conversations", h.ListConversations)
		r.Get("/conversations/{id}/messages", h.ListConversationMessages)
		r.Delete("/conversations/{id}", h.DeleteConversation)
	})
}
