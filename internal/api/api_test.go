package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Thomashighbaugh/tendril-wiki/internal/graph"
	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
	"github.com/Thomashighbaugh/tendril-wiki/internal/mru"
	"github.com/Thomashighbaugh/tendril-wiki/internal/queue"
	"github.com/Thomashighbaugh/tendril-wiki/internal/search"
	"github.com/Thomashighbaugh/tendril-wiki/internal/storage"
	"github.com/Thomashighbaugh/tendril-wiki/internal/testutil"
)

type testState struct {
	queue  *queue.Memory
	store  storage.Provider
	graph  *graph.Graph
	engine *search.Engine
	router http.Handler
}

func testEnv(t *testing.T, authToken string) *testState {
	t.Helper()
	_, store := testutil.TestWiki(t)
	tok := search.NewTokenizer()
	s := &testState{
		queue:  queue.NewMemory(),
		store:  store,
		graph:  graph.New(),
		engine: search.NewEngine(tok),
	}
	svc := NewService(s.queue, s.store, s.graph, s.engine, mru.New(0))
	s.router = NewRouter(svc, authToken != "", authToken, nil)
	return s
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetNote(t *testing.T) {
	s := testEnv(t, "")
	if err := s.store.Write(models.Note{Title: "garden", Body: "see [[roses]]", Tags: []string{"plants"}}); err != nil {
		t.Fatal(err)
	}
	s.graph.ApplyNote(models.Note{Title: "linker"}, []string{"garden"})

	w := do(t, s.router, http.MethodGet, "/notes/garden", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var detail NoteDetail
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatal(err)
	}
	if detail.Title != "garden" || detail.Body != "see [[roses]]" {
		t.Errorf("detail = %+v", detail)
	}
	if detail.Rendered == "" {
		t.Error("rendered HTML missing")
	}
	if len(detail.Backlinks) != 1 || detail.Backlinks[0] != "linker" {
		t.Errorf("backlinks = %v", detail.Backlinks)
	}
}

func TestGetNote_EscapedTitle(t *testing.T) {
	s := testEnv(t, "")
	if err := s.store.Write(models.Note{Title: "some page", Body: "x"}); err != nil {
		t.Fatal(err)
	}
	w := do(t, s.router, http.MethodGet, "/notes/some%20page", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGetNote_NotFound(t *testing.T) {
	s := testEnv(t, "")
	w := do(t, s.router, http.MethodGet, "/notes/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestEditNote_Enqueues(t *testing.T) {
	s := testEnv(t, "")
	w := do(t, s.router, http.MethodPut, "/notes", EditRequest{Title: "fresh", Body: "body"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if s.queue.Len() != 1 {
		t.Errorf("queued jobs = %d, want 1", s.queue.Len())
	}
}

func TestEditNote_RenameAlsoMovesArchive(t *testing.T) {
	s := testEnv(t, "")
	w := do(t, s.router, http.MethodPut, "/notes", EditRequest{Title: "new", OldTitle: "old", Body: "x"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
	jobs, err := s.queue.Pull(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 || jobs[0].Kind != queue.KindPatch || jobs[1].Kind != queue.KindArchiveMove {
		t.Errorf("jobs = %+v", jobs)
	}
}

func TestEditNote_ValidationFailure(t *testing.T) {
	s := testEnv(t, "")
	w := do(t, s.router, http.MethodPut, "/notes", EditRequest{Body: "no title"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeleteNote_Enqueues(t *testing.T) {
	s := testEnv(t, "")
	w := do(t, s.router, http.MethodDelete, "/notes/doomed", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
	if s.queue.Len() != 1 {
		t.Errorf("queued jobs = %d, want 1", s.queue.Len())
	}
}

func TestCreateBookmark(t *testing.T) {
	s := testEnv(t, "")
	w := do(t, s.router, http.MethodPost, "/bookmarks", BookmarkRequest{URL: "https://example.com", Tags: []string{"read-later"}})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestCreateBookmark_InvalidURL(t *testing.T) {
	s := testEnv(t, "")
	w := do(t, s.router, http.MethodPost, "/bookmarks", BookmarkRequest{URL: "not a url"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestArchiveBodyEndpoint(t *testing.T) {
	s := testEnv(t, "")
	w := do(t, s.router, http.MethodPost, "/archive", ArchiveBodyRequest{Title: "clip", Body: "text"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	s := testEnv(t, "")
	b := search.NewDocBuilder(search.NewTokenizer())
	s.engine.IndexOrUpdate(b.BuildDoc(models.Note{Title: "hit", Body: "rare needle"}))

	w := do(t, s.router, http.MethodGet, "/search?q=needle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "hit" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchEndpoint_MissingQuery(t *testing.T) {
	s := testEnv(t, "")
	w := do(t, s.router, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestTagEndpoints(t *testing.T) {
	s := testEnv(t, "")
	s.graph.ApplyNote(models.Note{Title: "a", Tags: []string{"go"}}, nil)

	w := do(t, s.router, http.MethodGet, "/tags", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var index TagIndexResponse
	if err := json.Unmarshal(w.Body.Bytes(), &index); err != nil {
		t.Fatal(err)
	}
	if len(index.Tags["go"]) != 1 {
		t.Errorf("tags = %v", index.Tags)
	}

	w = do(t, s.router, http.MethodGet, "/tags/go", nil)
	var titles TitlesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &titles); err != nil {
		t.Fatal(err)
	}
	if len(titles.Titles) != 1 || titles.Titles[0] != "a" {
		t.Errorf("titles = %v", titles.Titles)
	}
}

func TestAuth(t *testing.T) {
	s := testEnv(t, "secret")

	w := do(t, s.router, http.MethodGet, "/tags", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with token = %d, want 200", rec.Code)
	}
}
