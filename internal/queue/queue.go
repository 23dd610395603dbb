// Package queue provides the durable job queue feeding the processor.
package queue

import (
	"context"

	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
)

// Kind tags the job union.
type Kind string

// Job kinds consumed by the processor.
const (
	KindRebuild     Kind = "rebuild"
	KindPatch       Kind = "patch"
	KindDelete      Kind = "delete"
	KindArchive     Kind = "archive"
	KindArchiveMove Kind = "archive-move"
	KindNewFromURL  Kind = "new-from-url"
	KindArchiveBody Kind = "archive-body"
)

// Job is one immutable unit of work. Only the fields relevant to its kind
// are set; ownership transfers to the processor on pull.
type Job struct {
	Kind     Kind              `json:"kind"`
	Patch    *models.PatchData `json:"patch,omitempty"`
	Title    string            `json:"title,omitempty"`
	OldTitle string            `json:"old_title,omitempty"`
	NewTitle string            `json:"new_title,omitempty"`
	URL      string            `json:"url,omitempty"`
	Body     string            `json:"body,omitempty"`
	Tags     []string          `json:"tags,omitempty"`
}

// Rebuild recomputes the link/tag graph from the on-disk corpus.
func Rebuild() Job { return Job{Kind: KindRebuild} }

// Patch upserts a note from an edit payload.
func Patch(p models.PatchData) Job { return Job{Kind: KindPatch, Patch: &p} }

// Delete removes a note everywhere.
func Delete(title string) Job { return Job{Kind: KindDelete, Title: title} }

// Archive fetches and archives external content for an existing note.
func Archive(url, title string) Job { return Job{Kind: KindArchive, URL: url, Title: title} }

// ArchiveMove re-keys an archive entry.
func ArchiveMove(oldTitle, newTitle string) Job {
	return Job{Kind: KindArchiveMove, OldTitle: oldTitle, NewTitle: newTitle}
}

// NewFromURL imports an external page as a fresh note.
func NewFromURL(url string, tags []string) Job {
	return Job{Kind: KindNewFromURL, URL: url, Tags: tags}
}

// ArchiveBody archives a raw body with no extraction step.
func ArchiveBody(title, body string) Job {
	return Job{Kind: KindArchiveBody, Title: title, Body: body}
}

// Queue is the durable pull/push surface. Pull acknowledges: returned jobs
// are removed from the queue before the caller sees them.
type Queue interface {
	Push(ctx context.Context, jobs ...Job) error
	Pull(ctx context.Context, max int) ([]Job, error)
	Close() error
}
