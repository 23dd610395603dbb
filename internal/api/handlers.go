package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Thomashighbaugh/tendril-wiki/internal/apperr"
	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
	"github.com/Thomashighbaugh/tendril-wiki/internal/search"
)

// Handler holds the HTTP handlers over the API service.
type Handler struct {
	svc *Service
}

// NewHandler creates a handler set.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// titleParam extracts and decodes the wildcard title segment.
func titleParam(r *http.Request) string {
	raw := chi.URLParam(r, "*")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// GetNote handles GET /notes/{title}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	detail, err := h.svc.GetNote(r.Context(), title)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("note not found: "+title))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// EditNote handles PUT /notes. The patch is enqueued; 202 means the edit is
// durably queued, not that the indexes have converged.
func (h *Handler) EditNote(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	patch := models.PatchData{
		Title:    req.Title,
		OldTitle: req.OldTitle,
		Body:     req.Body,
		Tags:     req.Tags,
		Metadata: req.Metadata,
	}
	if err := h.svc.Edit(r.Context(), patch); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusAccepted, EnqueuedResponse{Status: "enqueued", Title: req.Title})
}

// DeleteNote handles DELETE /notes/{title}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	if err := h.svc.Delete(r.Context(), title); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusAccepted, EnqueuedResponse{Status: "enqueued", Title: title})
}

// CreateBookmark handles POST /bookmarks.
func (h *Handler) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req BookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.svc.NewFromURL(r.Context(), req.URL, req.Tags); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusAccepted, EnqueuedResponse{Status: "enqueued"})
}

// ArchiveBody handles POST /archive.
func (h *Handler) ArchiveBody(w http.ResponseWriter, r *http.Request) {
	var req ArchiveBodyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.svc.ArchiveBody(r.Context(), req.Title, req.Body); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusAccepted, EnqueuedResponse{Status: "enqueued", Title: req.Title})
}

// Search handles GET /search?q=...&limit=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("missing query parameter: q"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results := h.svc.Search(r.Context(), query, limit)
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Backlinks handles GET /backlinks/{title}.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	writeJSON(w, http.StatusOK, BacklinksResponse{
		Target:    title,
		Backlinks: h.svc.Backlinks(r.Context(), title),
	})
}

// Tags handles GET /tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TagIndexResponse{Tags: h.svc.TagIndex(r.Context())})
}

// TaggedWith handles GET /tags/{tag}.
func (h *Handler) TaggedWith(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if decoded, err := url.PathUnescape(tag); err == nil {
		tag = decoded
	}
	writeJSON(w, http.StatusOK, TitlesResponse{Titles: h.svc.TaggedWith(r.Context(), tag)})
}

// Recent handles GET /recent?limit=...
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, TitlesResponse{Titles: h.svc.Recent(r.Context(), limit)})
}
