// Package graph maintains the global backlink and tag indexes.
//
// Jobs mutate the graph concurrently, so every operation runs under the
// graph's own guard. Critical sections cover single read-modify-write passes,
// never whole job bodies; cross-store atomicity is explicitly not provided
// and divergence heals on the next rebuild.
package graph

import (
	"sort"
	"sync"

	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
)

// Graph holds two title-keyed mappings: backlinks[target] is the set of
// note titles that link to target, and tags[tag] is the set of note titles
// carrying that tag. Values are distinct; iteration is lexicographic.
type Graph struct {
	mu        sync.Mutex
	backlinks map[string][]string
	tags      map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		backlinks: make(map[string][]string),
		tags:      make(map[string][]string),
	}
}

// ApplyNote records the note's outlinks and tags. A title appears at most
// once per target no matter how many times the note links there.
func (g *Graph) ApplyNote(note models.Note, outlinks []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, target := range outlinks {
		g.backlinks[target] = insertDistinct(g.backlinks[target], note.Title)
	}
	for _, tag := range note.Tags {
		g.tags[tag] = insertDistinct(g.tags[tag], note.Title)
	}
}

// Rename replaces every value occurrence of oldTitle with newTitle and
// migrates the oldTitle backlink key to newTitle, merging value sets when
// newTitle already exists.
func (g *Graph) Rename(newTitle, oldTitle string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	renameValues(g.backlinks, newTitle, oldTitle)
	renameValues(g.tags, newTitle, oldTitle)
	if sources, ok := g.backlinks[oldTitle]; ok {
		delete(g.backlinks, oldTitle)
		merged := g.backlinks[newTitle]
		for _, s := range sources {
			merged = insertDistinct(merged, s)
		}
		g.backlinks[newTitle] = merged
	}
}

// RemoveNote deletes the title as a value from every collection and drops
// its own backlink key, leaving no dangling references.
func (g *Graph) RemoveNote(title string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	removeValue(g.backlinks, title)
	removeValue(g.tags, title)
	delete(g.backlinks, title)
}

// Replace swaps in a freshly computed graph state. Used by Rebuild, which
// supersedes whatever the incremental path accumulated.
func (g *Graph) Replace(other *Graph) {
	other.mu.Lock()
	backlinks := other.backlinks
	tags := other.tags
	other.mu.Unlock()

	g.mu.Lock()
	g.backlinks = backlinks
	g.tags = tags
	g.mu.Unlock()
}

// Backlinks returns the sorted set of titles linking to target.
func (g *Graph) Backlinks(target string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return sortedCopy(g.backlinks[target])
}

// TaggedWith returns the sorted set of titles carrying tag.
func (g *Graph) TaggedWith(tag string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return sortedCopy(g.tags[tag])
}

// BacklinkIndex snapshots the whole backlink mapping with lexicographic keys.
func (g *Graph) BacklinkIndex() map[string][]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return snapshot(g.backlinks)
}

// TagIndex snapshots the whole tag mapping with lexicographic keys.
func (g *Graph) TagIndex() map[string][]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return snapshot(g.tags)
}

// Tags returns every known tag in lexicographic order.
func (g *Graph) Tags() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]string, 0, len(g.tags))
	for k := range g.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func insertDistinct(set []string, title string) []string {
	for _, existing := range set {
		if existing == title {
			return set
		}
	}
	return append(set, title)
}

func renameValues(m map[string][]string, newTitle, oldTitle string) {
	for key, values := range m {
		for i, v := range values {
			if v == oldTitle {
				values[i] = newTitle
			}
		}
		m[key] = dedupe(values)
	}
}

func removeValue(m map[string][]string, title string) {
	for key, values := range m {
		kept := values[:0]
		for _, v := range values {
			if v != title {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			delete(m, key)
			continue
		}
		m[key] = kept
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	kept := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		kept = append(kept, v)
	}
	return kept
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

func snapshot(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = sortedCopy(v)
	}
	return out
}
