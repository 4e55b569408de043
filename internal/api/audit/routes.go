package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *Handler, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/audit/run", h.Run)
		r.Get("/audit/result", h.Result)
		r.Get("/audit/download/questions", h.DownloadQuestions)
		r.Get("/audit/download/memo", h.DownloadMemo)
	})
}
