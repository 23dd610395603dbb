package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Thomashighbaugh/tendril-wiki/internal/graph"
	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
	"github.com/Thomashighbaugh/tendril-wiki/internal/mru"
	"github.com/Thomashighbaugh/tendril-wiki/internal/queue"
	"github.com/Thomashighbaugh/tendril-wiki/internal/search"
	"github.com/Thomashighbaugh/tendril-wiki/internal/storage"
	"github.com/Thomashighbaugh/tendril-wiki/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider, *queue.Memory) {
	t.Helper()

	_, store := testutil.TestWiki(t)
	q := queue.NewMemory()
	tok := search.NewTokenizer()
	engine := search.NewEngine(tok)
	g := graph.New()
	recency := mru.New(0)

	builder := search.NewDocBuilder(tok)
	seed := models.Note{Title: "garden", Body: "water the [[roses]]", Tags: []string{"plants"}}
	if err := store.Write(seed); err != nil {
		t.Fatal(err)
	}
	engine.IndexOrUpdate(builder.BuildDoc(seed))
	g.ApplyNote(seed, []string{"roses"})
	recency.Touch("", "garden")

	return New(q, store, g, engine, recency), store, q
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper; exercise the handler
	// functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "write_note":
		result, err = srv.writeNote(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "list_tags":
		result, err = srv.listTags(ctx, req)
	case "recent_notes":
		result, err = srv.recentNotes(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchNotes(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "roses"})
	if !strings.Contains(resultText(r), "garden") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestReadNote(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"title": "garden"})
	text := resultText(r)
	if !strings.Contains(text, "water the [[roses]]") {
		t.Errorf("read result = %q", text)
	}
}

func TestReadNote_Missing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"title": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestWriteNote_Enqueues(t *testing.T) {
	srv, _, q := testServer(t)
	r := callTool(t, srv, "write_note", map[string]interface{}{
		"title": "fresh",
		"body":  "new content",
		"tags":  "a, b",
	})
	if resultText(r) != "queued: fresh" {
		t.Errorf("write result = %q", resultText(r))
	}
	if q.Len() != 1 {
		t.Errorf("queued jobs = %d, want 1", q.Len())
	}
}

func TestGetBacklinks(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_backlinks", map[string]interface{}{"title": "roses"})
	if resultText(r) != "garden" {
		t.Errorf("backlinks result = %q", resultText(r))
	}
}

func TestListTags(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "list_tags", map[string]interface{}{})
	if !strings.Contains(resultText(r), "plants") {
		t.Errorf("tags result = %q", resultText(r))
	}
}

func TestRecentNotes(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "recent_notes", map[string]interface{}{})
	if resultText(r) != "garden" {
		t.Errorf("recent result = %q", resultText(r))
	}
}
