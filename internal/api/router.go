package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes", h.EditNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Ingestion.
	r.Post("/bookmarks", h.CreateBookmark)
	r.Post("/archive", h.ArchiveBody)

	// Search.
	r.Get("/search", h.Search)

	// Graph lookups.
	r.Get("/backlinks/*", h.Backlinks)
	r.Get("/tags", h.Tags)
	r.Get("/tags/{tag}", h.TaggedWith)

	// Recency.
	r.Get("/recent", h.Recent)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
