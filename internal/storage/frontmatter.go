package storage

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
)

// NoteExt is the extension of note files under the wiki location.
const NoteExt = ".txt"

const fmDelim = "---"

// EncodeNote serializes a note as YAML frontmatter plus body.
func EncodeNote(note models.Note) ([]byte, error) {
	header := map[string]any{
		models.MetaTitle: note.Title,
	}
	if len(note.Tags) > 0 {
		header[models.MetaTags] = note.Tags
	}
	for k, v := range note.Metadata {
		if k == models.MetaTitle || k == models.MetaTags {
			continue
		}
		header[k] = v
	}

	var buf bytes.Buffer
	buf.WriteString(fmDelim)
	buf.WriteByte('\n')

	// yaml.Marshal of a map does not order keys; marshal one key at a time in
	// sorted order so encoded notes are byte-stable across writes.
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line, err := yaml.Marshal(map[string]any{k: header[k]})
		if err != nil {
			return nil, fmt.Errorf("storage: encode frontmatter: %w", err)
		}
		buf.Write(line)
	}

	buf.WriteString(fmDelim)
	buf.WriteByte('\n')
	buf.WriteString(note.Body)
	return buf.Bytes(), nil
}

// DecodeNote parses a note file: YAML frontmatter between leading ---
// delimiters, then the raw body. A file without frontmatter is all body.
func DecodeNote(data []byte) (models.Note, error) {
	header, body := splitFrontmatter(data)

	note := models.Note{Body: body, Metadata: make(map[string]string)}
	for k, v := range header {
		switch k {
		case models.MetaTitle:
			if s, ok := v.(string); ok {
				note.Title = s
			}
		case models.MetaTags:
			note.Tags = coerceTags(v)
		default:
			note.Metadata[k] = fmt.Sprint(v)
		}
	}
	if note.Title != "" {
		note.Metadata[models.MetaTitle] = note.Title
	}
	if len(note.Tags) > 0 {
		note.Metadata[models.MetaTags] = strings.Join(note.Tags, ",")
	}
	return note, nil
}

// splitFrontmatter separates the YAML header from the body. Invalid YAML
// falls back to treating the whole file as body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(fmDelim)) {
		return nil, string(data)
	}
	rest := trimmed[len(fmDelim):]
	idx := bytes.Index(rest, []byte("\n"+fmDelim))
	if idx < 0 {
		return nil, string(data)
	}
	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(fmDelim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var header map[string]any
	if err := yaml.Unmarshal(yamlBlock, &header); err != nil {
		return nil, string(data)
	}
	return header, body
}

// coerceTags accepts both YAML list and comma-separated string forms.
func coerceTags(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
