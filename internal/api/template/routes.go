package template

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *Handler, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/template/fill", h.Fill)
		r.Get("/template/document", h.Document)
		r.Get("/template/variables", h.Variables)
	})
}
