// Package watcher converts file-system changes under the wiki location into
// queue jobs, so edits made outside the web layer still converge the indexes.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Thomashighbaugh/tendril-wiki/internal/checksum"
	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
	"github.com/Thomashighbaugh/tendril-wiki/internal/queue"
	"github.com/Thomashighbaugh/tendril-wiki/internal/storage"
)

// rebuildDebounce coalesces rename storms into a single Rebuild job.
const rebuildDebounce = 200 * time.Millisecond

// Watch observes the wiki location until ctx is cancelled, enqueueing Patch
// jobs for created or written notes and Delete jobs for removed ones. Writes
// whose content checksum has not changed are suppressed, which also keeps the
// processor's own persisted writes from echoing back as fresh jobs forever.
func Watch(ctx context.Context, q queue.Queue, wikiRoot string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(wikiRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", wikiRoot))

	seen := make(map[string]string) // title -> last checksum

	var rebuildTimer *time.Timer
	var rebuildCh <-chan time.Time
	scheduleRebuild := func() {
		if rebuildTimer == nil {
			rebuildTimer = time.NewTimer(rebuildDebounce)
			rebuildCh = rebuildTimer.C
		} else {
			rebuildTimer.Reset(rebuildDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-rebuildCh:
			if err := q.Push(ctx, queue.Rebuild()); err != nil {
				logger.Warn("watcher: enqueue rebuild failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, storage.NoteExt) {
				continue
			}
			title := strings.TrimSuffix(name, storage.NoteExt)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := os.ReadFile(ev.Name)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("title", title), slog.String("error", readErr.Error()))
					continue
				}
				cs := checksum.Sum(data)
				if seen[title] == cs {
					continue
				}
				seen[title] = cs

				note, decErr := storage.DecodeNote(data)
				if decErr != nil {
					logger.Warn("watcher: decode failed", slog.String("title", title), slog.String("error", decErr.Error()))
					continue
				}
				if note.Title == "" {
					note.Title = title
				}
				patch := models.PatchData{
					Title:    note.Title,
					OldTitle: note.Title,
					Body:     note.Body,
					Tags:     note.Tags,
					Metadata: note.Metadata,
				}
				if err := q.Push(ctx, queue.Patch(patch)); err != nil {
					logger.Warn("watcher: enqueue patch failed", slog.String("title", title), slog.String("error", err.Error()))
				} else {
					logger.Debug("watcher: patch enqueued", slog.String("title", title))
				}

			case ev.Op&fsnotify.Remove != 0:
				delete(seen, title)
				if err := q.Push(ctx, queue.Delete(title)); err != nil {
					logger.Warn("watcher: enqueue delete failed", slog.String("title", title), slog.String("error", err.Error()))
				} else {
					logger.Debug("watcher: delete enqueued", slog.String("title", title))
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the old path only; the new path
				// arrives as a separate Create. Dropping the checksum and
				// scheduling a Rebuild reconciles whatever the pair left
				// behind.
				delete(seen, title)
				scheduleRebuild()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
