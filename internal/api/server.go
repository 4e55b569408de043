package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	auditapi "github.com/rsmnext/assistant-backend/internal/api/audit"
	authapi "github.com/rsmnext/assistant-backend/internal/api/auth"
	chatapi "github.com/rsmnext/assistant-backend/internal/api/chat"
	embedapi "github.com/rsmnext/assistant-backend/internal/api/embed"
	"github.com/rsmnext/assistant-backend/internal/api/middleware"
	templateapi "github.com/rsmnext/assistant-backend/internal/api/template"
	vatapi "github.com/rsmnext/assistant-backend/internal/api/vat"
)

// Handlers bundles every API handler the router mounts.
type Handlers struct {
	Auth     *authapi.Handler
	Chat     *chatapi.Handler
	Audit    *auditapi.Handler
	VAT      *vatapi.Handler
	Template *templateapi.Handler
	Embed    *embedapi.Handler
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h Handlers, resolver middleware.SessionResolver, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)   // Recover from panics
	r.Use(chimiddleware.RequestID)   // Add request ID
	r.Use(middleware.Logger(logger)) // Log requests
	r.Use(middleware.CORS)           // Handle CORS

	auth := middleware.Auth(resolver)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Fast endpoints get a request timeout. Batch runs (audit pipeline,
	// template filler, VAT batches) make many sequential upstream calls
	// and run much longer, so they are mounted without one.
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		authapi.RegisterRoutes(r, h.Auth, auth)
		chatapi.RegisterRoutes(r, h.Chat, auth)
		embedapi.RegisterRoutes(r, h.Embed, auth)
	})

	auditapi.RegisterRoutes(r, h.Audit, auth)
	templateapi.RegisterRoutes(r, h.Template, auth)
	vatapi.RegisterRoutes(r, h.VAT, auth)

	return r
}
