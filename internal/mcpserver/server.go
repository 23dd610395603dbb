// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes wiki tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Thomashighbaugh/tendril-wiki/internal/graph"
	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
	"github.com/Thomashighbaugh/tendril-wiki/internal/mru"
	"github.com/Thomashighbaugh/tendril-wiki/internal/queue"
	"github.com/Thomashighbaugh/tendril-wiki/internal/search"
	"github.com/Thomashighbaugh/tendril-wiki/internal/storage"
)

// Server wraps the MCP server with wiki tools.
type Server struct {
	mcp     *server.MCPServer
	queue   queue.Queue
	store   storage.Provider
	graph   *graph.Graph
	engine  *search.Engine
	recency *mru.Cache
}

// New creates a new MCP server with all wiki tools registered.
func New(q queue.Queue, store storage.Provider, g *graph.Graph, engine *search.Engine, recency *mru.Cache) *Server {
	s := &Server{queue: q, store: store, graph: g, engine: engine, recency: recency}

	s.mcp = server.NewMCPServer(
		"TendrilWiki",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Ranked full-text search across note bodies, tags and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note by title, including its tags and backlinks."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the note")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("write_note",
		mcp.WithDescription("Create or replace a note. The change is queued and the "+
			"link graph and search index converge shortly after."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the note")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Note body, [[wikilinks]] allowed")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags")),
	), s.writeNote)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to the specified note."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the note to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag with the titles carrying it."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("recent_notes",
		mcp.WithDescription("List recently modified notes, most recent first."),
	), s.recentNotes)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := s.engine.Search(query, 20)
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.store.ReadByTitle(title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", title)), nil
	}
	view := struct {
		Title     string   `json:"title"`
		Body      string   `json:"body"`
		Tags      []string `json:"tags"`
		Backlinks []string `json:"backlinks"`
	}{
		Title:     note.Title,
		Body:      note.Body,
		Tags:      note.Tags,
		Backlinks: s.graph.Backlinks(note.Title),
	}
	out, _ := json.MarshalIndent(view, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) writeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var tags []string
	if raw, tagErr := req.RequireString("tags"); tagErr == nil && raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	patch := models.PatchData{Title: title, OldTitle: title, Body: body, Tags: tags}
	if err := s.queue.Push(ctx, queue.Patch(patch)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("queued: %s", title)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl := s.graph.Backlinks(title)
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.graph.TagIndex(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) recentNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recent := s.recency.Recent(20)
	if len(recent) == 0 {
		return mcp.NewToolResultText("no recent notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(recent, "\n")), nil
}
