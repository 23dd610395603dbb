package archive

import (
	"errors"
	"testing"

	"github.com/Thomashighbaugh/tendril-wiki/internal/apperr"
)

func testStore(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	fs := testStore(t)
	text := "the archived page text"
	if err := fs.Write(Compress(text), "page"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := fs.Read("page")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != text {
		t.Errorf("text = %q, want %q", got, text)
	}
}

func TestExists(t *testing.T) {
	fs := testStore(t)
	if fs.Exists("missing") {
		t.Error("Exists(missing) = true")
	}
	if err := fs.Write(Compress("x"), "present"); err != nil {
		t.Fatal(err)
	}
	if !fs.Exists("present") {
		t.Error("Exists(present) = false")
	}
}

func TestMove(t *testing.T) {
	fs := testStore(t)
	if err := fs.Write(Compress("content"), "old"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Move("old", "new"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if fs.Exists("old") {
		t.Error("old entry survived move")
	}
	got, err := fs.Read("new")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if got != "content" {
		t.Errorf("text = %q", got)
	}
}

func TestMove_Missing(t *testing.T) {
	fs := testStore(t)
	if err := fs.Move("ghost", "anywhere"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete_MissingIsFine(t *testing.T) {
	fs := testStore(t)
	if err := fs.Delete("never-existed"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestRead_Missing(t *testing.T) {
	fs := testStore(t)
	if _, err := fs.Read("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEntryPath_RejectsSeparators(t *testing.T) {
	fs := testStore(t)
	if err := fs.Write(Compress("x"), "../escape"); err == nil {
		t.Error("expected error for title with path separators")
	}
}
