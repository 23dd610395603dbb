// Package models defines the domain types for tendril-wiki.
package models

// Reserved metadata keys. Everything else in Note.Metadata is free-form.
const (
	MetaTitle       = "title"
	MetaTags        = "tags"
	MetaContentType = "content-type"
	MetaURL         = "url"
)

// Note is one wiki page. The title doubles as its storage key, so renaming
// a note migrates it to a new key rather than mutating in place.
type Note struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Tags     []string          `json:"tags,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PatchData is the payload of an edit: the full replacement state of a note
// plus the title it was previously stored under (empty for a fresh note).
type PatchData struct {
	Title    string            `json:"title"`
	OldTitle string            `json:"old_title"`
	Body     string            `json:"body"`
	Tags     []string          `json:"tags,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Note converts the patch into its resulting note.
func (p PatchData) Note() Note {
	md := make(map[string]string, len(p.Metadata))
	for k, v := range p.Metadata {
		md[k] = v
	}
	return Note{
		Title:    p.Title,
		Body:     p.Body,
		Tags:     append([]string(nil), p.Tags...),
		Metadata: md,
	}
}

// Product is the result of extracting an external URL: the page title, the
// plain text used for archiving and search, and the raw HTML content.
type Product struct {
	Title   string
	Text    string
	Content string
}
