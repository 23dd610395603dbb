package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/Thomashighbaugh/tendril-wiki/internal/apperr"
	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
)

func testFS(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs, dir
}

func TestWriteAndReadByTitle(t *testing.T) {
	fs, _ := testFS(t)
	note := models.Note{
		Title: "garden",
		Body:  "the [[roses]] need water",
		Tags:  []string{"plants", "chores"},
	}
	if err := fs.Write(note); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := fs.ReadByTitle("garden")
	if err != nil {
		t.Fatalf("ReadByTitle: %v", err)
	}
	if got.Title != note.Title || got.Body != note.Body {
		t.Errorf("note = %+v", got)
	}
	if !reflect.DeepEqual(got.Tags, note.Tags) {
		t.Errorf("tags = %v, want %v", got.Tags, note.Tags)
	}
}

func TestReadByTitle_NotFound(t *testing.T) {
	fs, _ := testFS(t)
	_, err := fs.ReadByTitle("missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWrite_RejectsPathSeparators(t *testing.T) {
	fs, _ := testFS(t)
	if err := fs.Write(models.Note{Title: "../escape", Body: "x"}); err == nil {
		t.Error("expected error for title with path separators")
	}
	if err := fs.Write(models.Note{Title: "", Body: "x"}); err == nil {
		t.Error("expected error for empty title")
	}
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	fs, dir := testFS(t)
	if err := fs.Write(models.Note{Title: "clean", Body: "x"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "clean"+NoteExt {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir contents = %v", names)
	}
}

func TestDelete(t *testing.T) {
	fs, _ := testFS(t)
	if err := fs.Write(models.Note{Title: "doomed", Body: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := fs.Delete("doomed"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := fs.Delete("doomed"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestRename(t *testing.T) {
	fs, _ := testFS(t)
	if err := fs.Write(models.Note{Title: "before", Body: "body"}); err != nil {
		t.Fatal(err)
	}
	if err := fs.Rename("before", "after"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := fs.ReadByTitle("before"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old title err = %v, want ErrNotFound", err)
	}
	got, err := fs.ReadByTitle("after")
	if err != nil {
		t.Fatalf("ReadByTitle after rename: %v", err)
	}
	if got.Body != "body" {
		t.Errorf("body = %q", got.Body)
	}
}

func TestTitlesAndAll(t *testing.T) {
	fs, dir := testFS(t)
	for _, title := range []string{"one", "two"} {
		if err := fs.Write(models.Note{Title: title, Body: title + " body"}); err != nil {
			t.Fatal(err)
		}
	}
	// Non-note files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "stray.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	titles, err := fs.Titles()
	if err != nil {
		t.Fatalf("Titles: %v", err)
	}
	sort.Strings(titles)
	if !reflect.DeepEqual(titles, []string{"one", "two"}) {
		t.Errorf("titles = %v", titles)
	}

	notes, err := fs.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(notes) != 2 {
		t.Errorf("len(notes) = %d, want 2", len(notes))
	}
}
