// Package testutil provides shared test helpers for setting up wikis and queues.
package testutil

import (
	"os"
	"testing"

	"github.com/Thomashighbaugh/tendril-wiki/internal/queue"
	"github.com/Thomashighbaugh/tendril-wiki/internal/storage"
)

// TestQueue creates a temporary SQLite-backed queue that is automatically cleaned up.
func TestQueue(t *testing.T) *queue.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "tendril-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	q, err := queue.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { q.Close() })
	return q
}

// TestWiki creates a temporary notes directory with a storage.Provider.
func TestWiki(t *testing.T) (string, storage.Provider) {
	t.Helper()
	wikiDir := t.TempDir()
	store, err := storage.NewFS(wikiDir)
	if err != nil {
		t.Fatal(err)
	}
	return wikiDir, store
}
