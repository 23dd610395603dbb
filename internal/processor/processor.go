// Package processor pulls batches of pending jobs from the durable queue and
// applies them to the note store, the link/tag graph, the search index, and
// the archive store.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Thomashighbaugh/tendril-wiki/internal/archive"
	"github.com/Thomashighbaugh/tendril-wiki/internal/graph"
	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
	"github.com/Thomashighbaugh/tendril-wiki/internal/mru"
	"github.com/Thomashighbaugh/tendril-wiki/internal/queue"
	"github.com/Thomashighbaugh/tendril-wiki/internal/search"
	"github.com/Thomashighbaugh/tendril-wiki/internal/storage"
	"github.com/Thomashighbaugh/tendril-wiki/internal/wikitext"
)

// Tunable pump constants: how many jobs one cycle pulls and how long the
// loop idles between cycles. The idle is a drain interval, not a rate limit.
const (
	DefaultBatchSize     = 50
	DefaultDrainInterval = 10 * time.Millisecond
)

// titleBlocklist strips characters that cannot appear in a note title when
// one is derived from an extracted page.
var titleBlocklist = regexp.MustCompile("[?\\\\/|:;><,.\n$&]")

// EventFunc receives a notification after a job mutates shared state.
// event is one of "note.updated", "note.deleted", "archive.updated".
type EventFunc func(event, title string)

// Processor drives the job pump. All jobs in a batch run concurrently; each
// shared structure applies its own per-operation guard and nothing spans
// stores atomically, so two jobs racing on one title resolve last-writer-wins.
type Processor struct {
	queue     queue.Queue
	store     storage.Provider
	archive   archive.Store
	graph     *graph.Graph
	sink      search.Sink
	builder   *search.DocBuilder
	recency   *mru.Cache
	extractor archive.Extractor
	logger    *slog.Logger
	events    EventFunc

	batchSize int
	drain     time.Duration
}

// Config wires a Processor.
type Config struct {
	Queue     queue.Queue
	Store     storage.Provider
	Archive   archive.Store
	Graph     *graph.Graph
	Sink      search.Sink
	Builder   *search.DocBuilder
	Recency   *mru.Cache
	Extractor archive.Extractor
	Logger    *slog.Logger
	Events    EventFunc

	BatchSize     int
	DrainInterval time.Duration
}

// New returns a processor over the given collaborators.
func New(cfg Config) *Processor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = DefaultDrainInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Events == nil {
		cfg.Events = func(string, string) {}
	}
	return &Processor{
		queue:     cfg.Queue,
		store:     cfg.Store,
		archive:   cfg.Archive,
		graph:     cfg.Graph,
		sink:      cfg.Sink,
		builder:   cfg.Builder,
		recency:   cfg.Recency,
		extractor: cfg.Extractor,
		logger:    cfg.Logger,
		events:    cfg.Events,
		batchSize: cfg.BatchSize,
		drain:     cfg.DrainInterval,
	}
}

// Run drives the pull/dispatch/idle cycle until ctx is cancelled. A queue
// pull failure is fatal: the error propagates and terminates the process.
// Job failures are not: they abort only their own job, with a log line.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := p.RunBatch(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.drain):
		}
	}
}

// RunBatch pulls and dispatches a single batch: all pulled jobs run
// concurrently with a ceiling equal to the batch size, so a full batch has
// no additional queuing delay. Also used directly by tests that drive the
// pump themselves.
func (p *Processor) RunBatch(ctx context.Context) error {
	jobs, err := p.queue.Pull(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("processor: pull jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(jobs))
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			p.dispatch(gctx, job)
			return nil
		})
	}
	return g.Wait()
}

func (p *Processor) dispatch(ctx context.Context, job queue.Job) {
	switch job.Kind {
	case queue.KindRebuild:
		p.handleRebuild()
	case queue.KindPatch:
		p.handlePatch(job)
	case queue.KindDelete:
		p.handleDelete(job.Title)
	case queue.KindArchive:
		p.handleArchive(ctx, job.URL, job.Title)
	case queue.KindArchiveMove:
		p.handleArchiveMove(job.OldTitle, job.NewTitle)
	case queue.KindNewFromURL:
		p.handleNewFromURL(ctx, job.URL, job.Tags)
	case queue.KindArchiveBody:
		p.handleArchiveBody(job.Title, job.Body)
	default:
		p.logger.Warn("processor: unknown job kind", slog.String("kind", string(job.Kind)))
	}
}

// handleRebuild recomputes the whole link/tag graph from the on-disk corpus,
// superseding whatever the incremental path accumulated.
func (p *Processor) handleRebuild() {
	notes, err := p.store.All()
	if err != nil {
		p.logger.Error("processor: rebuild scan failed", slog.String("error", err.Error()))
		return
	}
	fresh := graph.New()
	for _, note := range notes {
		fresh.ApplyNote(note, wikitext.Outlinks(wikitext.ParseDocument(note.Body)))
	}
	p.graph.Replace(fresh)
	p.logger.Info("processor: graph rebuilt", slog.Int("notes", len(notes)))
}

func (p *Processor) handlePatch(job queue.Job) {
	if job.Patch == nil {
		p.logger.Warn("processor: patch job without payload")
		return
	}
	patch := *job.Patch
	note := patch.Note()

	if err := p.store.Write(note); err != nil {
		p.logger.Error("processor: patch write failed",
			slog.String("title", patch.Title), slog.String("error", err.Error()))
		return
	}
	p.applyToIndexes(note)

	if patch.OldTitle != "" && patch.OldTitle != patch.Title {
		p.graph.Rename(patch.Title, patch.OldTitle)
		if err := p.store.Delete(patch.OldTitle); err != nil {
			p.logger.Warn("processor: stale note removal failed",
				slog.String("title", patch.OldTitle), slog.String("error", err.Error()))
		}
	}
	p.recency.Touch(patch.OldTitle, patch.Title)
	p.events("note.updated", patch.Title)
}

// handleDelete removes a note from every structure. An unresolvable title is
// an operator error: the job aborts loudly and nothing is mutated.
func (p *Processor) handleDelete(title string) {
	note, err := p.store.ReadByTitle(title)
	if err != nil {
		p.logger.Error("processor: failed to find note for deletion",
			slog.String("title", title), slog.String("error", err.Error()))
		return
	}
	p.graph.RemoveNote(note.Title)
	p.sink.RemoveByTitle(note.Title)
	if err := p.archive.Delete(note.Title); err != nil {
		p.logger.Warn("processor: archive delete failed",
			slog.String("title", note.Title), slog.String("error", err.Error()))
	}
	if err := p.store.Delete(note.Title); err != nil {
		p.logger.Error("processor: note delete failed",
			slog.String("title", note.Title), slog.String("error", err.Error()))
		return
	}
	p.events("note.deleted", note.Title)
}

// handleArchive fetches and archives external content for an existing note.
// A stale entry is never refreshed: existence of the key skips the write.
func (p *Processor) handleArchive(ctx context.Context, url, title string) {
	product, err := p.extractor.Extract(ctx, url)
	if err != nil {
		p.logger.Error("processor: archive extraction failed",
			slog.String("url", url), slog.String("error", err.Error()))
		return
	}
	compressed := archive.Compress(product.Text)
	if p.archive.Exists(title) {
		return
	}
	if err := p.archive.Write(compressed, title); err != nil {
		p.logger.Error("processor: archive write failed",
			slog.String("title", title), slog.String("error", err.Error()))
		return
	}
	p.sink.IndexOrUpdate(p.builder.BuildFromText(title, product.Text))
	p.events("archive.updated", title)
}

func (p *Processor) handleArchiveMove(oldTitle, newTitle string) {
	if err := p.archive.Move(oldTitle, newTitle); err != nil {
		p.logger.Error("processor: archive move failed",
			slog.String("old_title", oldTitle), slog.String("new_title", newTitle),
			slog.String("error", err.Error()))
	}
}

// handleNewFromURL imports an external page: extract, sanitize, archive,
// then persist and index a fresh note pointing back at the source.
func (p *Processor) handleNewFromURL(ctx context.Context, url string, tags []string) {
	product, err := p.extractor.Extract(ctx, url)
	if err != nil {
		p.logger.Error("processor: import extraction failed",
			slog.String("url", url), slog.String("error", err.Error()))
		return
	}

	title := SanitizeTitle(product.Title)
	compressed := archive.Compress(product.Text)
	if err := p.archive.Write(compressed, title); err != nil {
		p.logger.Error("processor: archive write failed",
			slog.String("title", title), slog.String("error", err.Error()))
		return
	}
	p.sink.IndexOrUpdate(p.builder.BuildFromText(title, product.Text))

	patch := models.PatchData{
		Title: title,
		Body:  archive.SanitizeHTML(product.Content),
		Tags:  tags,
		Metadata: map[string]string{
			models.MetaURL:         url,
			models.MetaContentType: "html",
		},
	}
	note := patch.Note()
	if err := p.store.Write(note); err != nil {
		p.logger.Error("processor: import write failed",
			slog.String("title", title), slog.String("error", err.Error()))
		return
	}
	p.applyToIndexes(note)
	p.recency.Touch("", title)
	p.events("note.updated", title)
}

func (p *Processor) handleArchiveBody(title, body string) {
	compressed := archive.Compress(body)
	if err := p.archive.Write(compressed, title); err != nil {
		p.logger.Error("processor: archive write failed",
			slog.String("title", title), slog.String("error", err.Error()))
		return
	}
	p.sink.IndexOrUpdate(p.builder.BuildFromText(title, body))
	p.events("archive.updated", title)
}

// applyToIndexes updates the graph and the search index for a note. Each
// mutation takes its own guard; there is no transaction across the two.
func (p *Processor) applyToIndexes(note models.Note) {
	outlinks := wikitext.Outlinks(wikitext.ParseDocument(note.Body))
	p.graph.ApplyNote(note, outlinks)
	p.sink.IndexOrUpdate(p.builder.BuildDoc(note))
}

// SanitizeTitle strips the blocklisted characters from an extracted title.
func SanitizeTitle(title string) string {
	return titleBlocklist.ReplaceAllString(title, "")
}
