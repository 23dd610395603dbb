package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/Thomashighbaugh/tendril-wiki/internal/search"
)

// EditRequest is the body of PUT /notes: the full replacement state of a
// note plus the title it was previously stored under (empty for new notes).
type EditRequest struct {
	Title    string            `json:"title"`
	OldTitle string            `json:"old_title"`
	Body     string            `json:"body"`
	Tags     []string          `json:"tags"`
	Metadata map[string]string `json:"metadata"`
}

// Validate checks the edit payload.
func (r EditRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 256)),
	)
}

// BookmarkRequest is the body of POST /bookmarks: import a page by URL.
type BookmarkRequest struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// Validate checks the bookmark payload.
func (r BookmarkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, is.URL),
	)
}

// ArchiveBodyRequest is the body of POST /archive: raw text ingestion.
type ArchiveBodyRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Validate checks the ingestion payload.
func (r ArchiveBodyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.Body, validation.Required),
	)
}

// EnqueuedResponse acknowledges an accepted mutation. Convergence is
// asynchronous and is not confirmed back to the caller.
type EnqueuedResponse struct {
	Status string `json:"status"`
	Title  string `json:"title,omitempty"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []search.Result `json:"results"`
}

// BacklinksResponse wraps a backlink lookup.
type BacklinksResponse struct {
	Target    string   `json:"target"`
	Backlinks []string `json:"backlinks"`
}

// TagIndexResponse wraps the full tag mapping.
type TagIndexResponse struct {
	Tags map[string][]string `json:"tags"`
}

// TitlesResponse wraps a plain list of titles.
type TitlesResponse struct {
	Titles []string `json:"titles"`
}
