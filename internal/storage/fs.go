package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Thomashighbaugh/tendril-wiki/internal/apperr"
	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the wiki location
}

// NewFS creates a provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// titlePath maps a title to its file path and rejects titles that would
// escape the wiki root.
func (f *FS) titlePath(title string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("storage: empty title")
	}
	if strings.ContainsAny(title, `/\`) || title == "." || title == ".." {
		return "", fmt.Errorf("storage: title contains path separators: %q", title)
	}
	return filepath.Join(f.root, title+NoteExt), nil
}

// ReadByTitle reads and decodes the note stored under title.
func (f *FS) ReadByTitle(title string) (models.Note, error) {
	path, err := f.titlePath(title)
	if err != nil {
		return models.Note{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Note{}, fmt.Errorf("storage: read %q: %w", title, apperr.ErrNotFound)
		}
		return models.Note{}, fmt.Errorf("storage: read %q: %w", title, err)
	}
	note, err := DecodeNote(data)
	if err != nil {
		return models.Note{}, fmt.Errorf("storage: decode %q: %w", title, err)
	}
	if note.Title == "" {
		note.Title = title
	}
	return note, nil
}

// Write encodes the note and writes it atomically: tmp file → fsync → rename.
func (f *FS) Write(note models.Note) error {
	path, err := f.titlePath(note.Title)
	if err != nil {
		return err
	}
	data, err := EncodeNote(note)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".tendril-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the note stored under title.
func (f *FS) Delete(title string) error {
	path, err := f.titlePath(title)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("storage: delete %q: %w", title, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %q: %w", title, err)
	}
	return nil
}

// Rename migrates a note file from oldTitle to newTitle.
func (f *FS) Rename(oldTitle, newTitle string) error {
	oldPath, err := f.titlePath(oldTitle)
	if err != nil {
		return err
	}
	newPath, err := f.titlePath(newTitle)
	if err != nil {
		return err
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("storage: rename %q: %w", oldTitle, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: rename %q -> %q: %w", oldTitle, newTitle, err)
	}
	return nil
}

// Titles lists every stored note title, in filesystem enumeration order.
func (f *FS) Titles() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), NoteExt) {
			continue
		}
		out = append(out, strings.TrimSuffix(entry.Name(), NoteExt))
	}
	return out, nil
}

// All reads and decodes every stored note. Files that fail to decode are
// skipped; a wiki with one corrupt page still rebuilds.
func (f *FS) All() ([]models.Note, error) {
	titles, err := f.Titles()
	if err != nil {
		return nil, err
	}
	notes := make([]models.Note, 0, len(titles))
	for _, title := range titles {
		note, err := f.ReadByTitle(title)
		if err != nil {
			continue
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// Verify *FS satisfies Provider at compile time.
var _ Provider = (*FS)(nil)
