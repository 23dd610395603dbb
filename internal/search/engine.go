package search

import (
	"sort"
	"strings"
	"sync"
)

// Sink is the index surface the job processor writes through.
type Sink interface {
	IndexOrUpdate(doc Doc)
	RemoveByTitle(title string)
}

// Verify *Engine satisfies Sink at compile time.
var _ Sink = (*Engine)(nil)

// Engine is the in-memory search index: a guarded map of documents keyed by
// title. Mutations take the engine's own guard for the duration of the
// single map operation.
type Engine struct {
	mu   sync.Mutex
	tok  Tokenizer
	docs map[string]Doc
}

// NewEngine returns an empty engine querying through tok.
func NewEngine(tok Tokenizer) *Engine {
	return &Engine{tok: tok, docs: make(map[string]Doc)}
}

// IndexOrUpdate inserts or replaces the document under its id.
func (e *Engine) IndexOrUpdate(doc Doc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[doc.ID] = doc
}

// RemoveByTitle drops the document stored under title, if any.
func (e *Engine) RemoveByTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.docs, title)
}

// Len returns the number of indexed documents.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.docs)
}

// Result is one search hit.
type Result struct {
	ID      string `json:"id"`
	Score   int    `json:"score"`
	Snippet string `json:"snippet"`
}

// Search ranks documents by the summed weight of the query's tokens and
// returns up to limit hits, best first. Ties break lexicographically by id
// so results are deterministic.
func (e *Engine) Search(query string, limit int) []Result {
	if limit <= 0 {
		limit = 20
	}
	terms := e.tok.Tokenize(query)

	e.mu.Lock()
	var results []Result
	for id, doc := range e.docs {
		score := 0
		for term := range terms {
			score += doc.Tokens[term]
		}
		if score == 0 {
			continue
		}
		results = append(results, Result{ID: id, Score: score, Snippet: snippet(doc.Content, terms)})
	}
	e.mu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

const snippetRadius = 60

// snippet returns a short window of content around the first matched term.
func snippet(content string, terms map[string]int) string {
	lower := strings.ToLower(content)
	at := -1
	for term := range terms {
		if i := strings.Index(lower, term); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	if at < 0 {
		if len(content) > 2*snippetRadius {
			return content[:2*snippetRadius] + "..."
		}
		return content
	}
	start := at - snippetRadius
	if start < 0 {
		start = 0
	}
	end := at + snippetRadius
	if end > len(content) {
		end = len(content)
	}
	out := content[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(content) {
		out += "..."
	}
	return out
}
