package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *Handler, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/chat", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Send)
		r.Get("/history", h.History)
		r.Delete("/history", h.Clear)
		r.Get("/export", h.Export)
	})
}
