// Package api exposes the wiki over a small chi REST surface. Mutations are
// enqueued, not applied inline: handlers report success once the job is
// durably queued and the indexes converge asynchronously.
package api

import (
	"context"

	"github.com/Thomashighbaugh/tendril-wiki/internal/graph"
	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
	"github.com/Thomashighbaugh/tendril-wiki/internal/mru"
	"github.com/Thomashighbaugh/tendril-wiki/internal/queue"
	"github.com/Thomashighbaugh/tendril-wiki/internal/search"
	"github.com/Thomashighbaugh/tendril-wiki/internal/storage"
	"github.com/Thomashighbaugh/tendril-wiki/internal/wikitext"
)

// Service coordinates reads against the shared indexes and writes through
// the job queue.
type Service struct {
	queue   queue.Queue
	store   storage.Provider
	graph   *graph.Graph
	engine  *search.Engine
	recency *mru.Cache
}

// NewService wires the API service.
func NewService(q queue.Queue, store storage.Provider, g *graph.Graph, engine *search.Engine, recency *mru.Cache) *Service {
	return &Service{queue: q, store: store, graph: g, engine: engine, recency: recency}
}

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Rendered  string            `json:"rendered"`
	Tags      []string          `json:"tags"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Backlinks []string          `json:"backlinks"`
}

// GetNote reads a note and enriches it with rendered HTML and backlinks.
func (s *Service) GetNote(_ context.Context, title string) (*NoteDetail, error) {
	note, err := s.store.ReadByTitle(title)
	if err != nil {
		return nil, err
	}
	return &NoteDetail{
		Title:     note.Title,
		Body:      note.Body,
		Rendered:  wikitext.RenderDocument(wikitext.ParseDocument(note.Body)),
		Tags:      nonNilSlice(note.Tags),
		Metadata:  note.Metadata,
		Backlinks: nonNilSlice(s.graph.Backlinks(note.Title)),
	}, nil
}

// Edit enqueues a Patch for the note; on a rename it also enqueues the
// archive re-key so any archived copy follows the note.
func (s *Service) Edit(ctx context.Context, patch models.PatchData) error {
	jobs := []queue.Job{queue.Patch(patch)}
	if patch.OldTitle != "" && patch.OldTitle != patch.Title {
		jobs = append(jobs, queue.ArchiveMove(patch.OldTitle, patch.Title))
	}
	return s.queue.Push(ctx, jobs...)
}

// Delete enqueues removal of the note everywhere.
func (s *Service) Delete(ctx context.Context, title string) error {
	return s.queue.Push(ctx, queue.Delete(title))
}

// NewFromURL enqueues the import of an external page.
func (s *Service) NewFromURL(ctx context.Context, url string, tags []string) error {
	return s.queue.Push(ctx, queue.NewFromURL(url, tags))
}

// ArchiveBody enqueues direct ingestion of raw text into the archive.
func (s *Service) ArchiveBody(ctx context.Context, title, body string) error {
	return s.queue.Push(ctx, queue.ArchiveBody(title, body))
}

// Search runs a ranked full-text query.
func (s *Service) Search(_ context.Context, query string, limit int) []search.Result {
	return s.engine.Search(query, limit)
}

// Backlinks returns the titles linking to target.
func (s *Service) Backlinks(_ context.Context, target string) []string {
	return nonNilSlice(s.graph.Backlinks(target))
}

// TagIndex returns the full tag mapping.
func (s *Service) TagIndex(_ context.Context) map[string][]string {
	return s.graph.TagIndex()
}

// TaggedWith returns the titles carrying tag.
func (s *Service) TaggedWith(_ context.Context, tag string) []string {
	return nonNilSlice(s.graph.TaggedWith(tag))
}

// Recent returns up to n recently touched titles, most recent first.
func (s *Service) Recent(_ context.Context, n int) []string {
	return nonNilSlice(s.recency.Recent(n))
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
