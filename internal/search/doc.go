package search

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
	"github.com/Thomashighbaugh/tendril-wiki/internal/storage"
)

// Doc is one searchable document: the note title as id, a token → weight
// map, and a copy of the raw body kept for snippet generation.
type Doc struct {
	ID      string         `json:"id"`
	Tokens  map[string]int `json:"tokens"`
	Content string         `json:"content"`
}

// DocBuilder builds weighted search documents through an opaque tokenizer.
type DocBuilder struct {
	tok Tokenizer
}

// NewDocBuilder returns a builder over the given tokenizer.
func NewDocBuilder(tok Tokenizer) *DocBuilder {
	return &DocBuilder{tok: tok}
}

// BuildDoc tokenizes body, tags, and title as one string, then triples the
// weight of every token that also appears in the title on its own. A title
// token missing from the combined map would break the concatenation
// invariant; it is logged and skipped rather than treated as fatal.
func (b *DocBuilder) BuildDoc(note models.Note) Doc {
	var sb strings.Builder
	sb.WriteString(note.Body)
	sb.WriteByte(' ')
	sb.WriteString(strings.Join(note.Tags, " "))
	sb.WriteByte(' ')
	sb.WriteString(note.Title)

	tokens := b.tok.Tokenize(sb.String())
	for token := range b.tok.Tokenize(note.Title) {
		if _, ok := tokens[token]; !ok {
			slog.Warn("search: title token missing from combined tokenization",
				slog.String("token", token),
				slog.String("title", note.Title))
			continue
		}
		tokens[token] *= 3
	}

	return Doc{
		ID:      note.Title,
		Tokens:  tokens,
		Content: note.Body,
	}
}

// BuildFromText builds a document for externally fetched plain text, such as
// an archived page. The title weighting applies the same way.
func (b *DocBuilder) BuildFromText(title, text string) Doc {
	return b.BuildDoc(models.Note{Title: title, Body: text})
}

// LoadAll scans location non-recursively, decodes every note file, and
// builds a document per note. Files that fail to decode are skipped. A
// missing title metadata field defaults to the filename with the extension
// stripped. Order follows filesystem enumeration and is not stable across
// platforms; callers use it only to seed an index.
func (b *DocBuilder) LoadAll(location string) ([]Doc, error) {
	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, err
	}
	var docs []Doc
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), storage.NoteExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(location, entry.Name()))
		if err != nil {
			slog.Warn("search: read note failed", slog.String("file", entry.Name()), slog.String("error", err.Error()))
			continue
		}
		note, err := storage.DecodeNote(data)
		if err != nil {
			slog.Warn("search: decode note failed", slog.String("file", entry.Name()), slog.String("error", err.Error()))
			continue
		}
		if note.Title == "" {
			note.Title = strings.TrimSuffix(entry.Name(), storage.NoteExt)
		}
		docs = append(docs, b.BuildDoc(note))
	}
	return docs, nil
}
