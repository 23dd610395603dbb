package search

import (
	"strings"
	"testing"

	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
)

func testEngine(t *testing.T) (*Engine, *DocBuilder) {
	t.Helper()
	tok := NewTokenizer()
	return NewEngine(tok), NewDocBuilder(tok)
}

func TestSearch_RanksByWeight(t *testing.T) {
	engine, b := testEngine(t)
	engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: "ferns", Body: "ferns ferns everywhere"}))
	engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: "misc", Body: "a single mention of ferns"}))

	results := engine.Search("ferns", 10)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].ID != "ferns" {
		t.Errorf("top result = %q, want ferns", results[0].ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %d, %d", results[0].Score, results[1].Score)
	}
}

func TestSearch_TieBreaksByID(t *testing.T) {
	engine, b := testEngine(t)
	engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: "bbb", Body: "moss"}))
	engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: "aaa", Body: "moss"}))

	results := engine.Search("moss", 10)
	if len(results) != 2 || results[0].ID != "aaa" || results[1].ID != "bbb" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	engine, b := testEngine(t)
	engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: "note", Body: "something"}))
	if results := engine.Search("absent", 10); len(results) != 0 {
		t.Errorf("results = %+v, want none", results)
	}
}

func TestSearch_Limit(t *testing.T) {
	engine, b := testEngine(t)
	for _, title := range []string{"a", "b", "c"} {
		engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: title, Body: "shared"}))
	}
	if results := engine.Search("shared", 2); len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
}

func TestRemoveByTitle(t *testing.T) {
	engine, b := testEngine(t)
	engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: "gone", Body: "findable"}))
	engine.RemoveByTitle("gone")

	if engine.Len() != 0 {
		t.Errorf("len = %d, want 0", engine.Len())
	}
	if results := engine.Search("findable", 10); len(results) != 0 {
		t.Errorf("results = %+v, want none", results)
	}
}

func TestIndexOrUpdate_Replaces(t *testing.T) {
	engine, b := testEngine(t)
	engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: "note", Body: "before"}))
	engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: "note", Body: "after"}))

	if engine.Len() != 1 {
		t.Fatalf("len = %d, want 1", engine.Len())
	}
	if results := engine.Search("before", 10); len(results) != 0 {
		t.Errorf("stale tokens survived update: %+v", results)
	}
	if results := engine.Search("after", 10); len(results) != 1 {
		t.Errorf("results = %+v, want 1 hit", results)
	}
}

func TestSearch_Snippet(t *testing.T) {
	engine, b := testEngine(t)
	body := strings.Repeat("filler ", 40) + "needle in the middle " + strings.Repeat("filler ", 40)
	engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: "hay", Body: body}))

	results := engine.Search("needle", 10)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if !strings.Contains(results[0].Snippet, "needle") {
		t.Errorf("snippet = %q, want it to contain needle", results[0].Snippet)
	}
	if len(results[0].Snippet) > 2*snippetRadius+6 {
		t.Errorf("snippet too long: %d chars", len(results[0].Snippet))
	}
}
