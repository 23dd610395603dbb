// Package archive stores compressed copies of externally fetched content,
// one entry per note title, and extracts that content from remote URLs.
package archive

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Thomashighbaugh/tendril-wiki/internal/apperr"
)

const archiveExt = ".gz"

// Store is the archive surface the job processor consumes.
type Store interface {
	Exists(title string) bool
	Write(compressed []byte, title string) error
	Move(oldTitle, newTitle string) error
	Delete(title string) error
	Read(title string) (string, error)
}

// Verify *FS satisfies Store at compile time.
var _ Store = (*FS)(nil)

// FS keeps archive entries as gzip files under a single directory.
type FS struct {
	root string
}

// NewFS creates an archive store rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("archive: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

func (f *FS) entryPath(title string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("archive: empty title")
	}
	if strings.ContainsAny(title, `/\`) {
		return "", fmt.Errorf("archive: title contains path separators: %q", title)
	}
	return filepath.Join(f.root, title+archiveExt), nil
}

// Exists reports whether an archive entry is stored under title.
func (f *FS) Exists(title string) bool {
	path, err := f.entryPath(title)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Write stores already-compressed bytes under title, overwriting.
func (f *FS) Write(compressed []byte, title string) error {
	path, err := f.entryPath(title)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return fmt.Errorf("archive: write %q: %w", title, err)
	}
	return nil
}

// Move renames an entry's key with no content transformation.
func (f *FS) Move(oldTitle, newTitle string) error {
	oldPath, err := f.entryPath(oldTitle)
	if err != nil {
		return err
	}
	newPath, err := f.entryPath(newTitle)
	if err != nil {
		return err
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("archive: move %q: %w", oldTitle, apperr.ErrNotFound)
		}
		return fmt.Errorf("archive: move %q -> %q: %w", oldTitle, newTitle, err)
	}
	return nil
}

// Delete removes the entry stored under title. Missing entries are fine:
// most notes never had an archive.
func (f *FS) Delete(title string) error {
	path, err := f.entryPath(title)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("archive: delete %q: %w", title, err)
	}
	return nil
}

// Read decompresses and returns the archived text for title.
func (f *FS) Read(title string) (string, error) {
	path, err := f.entryPath(title)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("archive: read %q: %w", title, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("archive: read %q: %w", title, err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("archive: decompress %q: %w", title, err)
	}
	defer zr.Close()
	text, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("archive: decompress %q: %w", title, err)
	}
	return string(text), nil
}

// Compress gzips text for archival. The codec is opaque to callers; they
// hand the bytes straight to a Store.
func Compress(text string) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(text))
	_ = zw.Close()
	return buf.Bytes()
}
