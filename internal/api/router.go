package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/xclip/internal/api/handler"
	mw "github.com/iconidentify/xclip/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	resolveHandler *handler.ResolveHandler,
	batchHandler *handler.BatchHandler,
	credentialsHandler *handler.CredentialsHandler,
	healthHandler *handler.HealthHandler,
	apiKey string,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(mw.CORS)

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(apiKey))

		r.Get("/stats", healthHandler.Stats)

		// Single post resolution
		r.Post("/resolve", resolveHandler.Resolve)
		r.Get("/info", resolveHandler.Info)
		r.Get("/probe/{postID}", resolveHandler.Probe)
		r.Delete("/auth/guest-token", resolveHandler.ClearGuestToken)

		// Batches
		r.Post("/batches", batchHandler.Submit)
		r.Get("/batches/{batchID}", batchHandler.Get)
		r.Get("/jobs/{jobID}", batchHandler.GetJob)

		// Session cookie for age-restricted posts
		r.Put("/credentials", credentialsHandler.Set)
		r.Get("/credentials", credentialsHandler.Status)
		r.Delete("/credentials", credentialsHandler.Clear)
	})

	return r
}
