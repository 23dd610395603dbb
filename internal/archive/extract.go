package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/Thomashighbaugh/tendril-wiki/internal/models"
)

// Extractor fetches a remote URL and distills it into a Product. Extraction
// may block on network I/O; callers run it inside the job's own task so a
// slow fetch stalls only that job.
type Extractor interface {
	Extract(ctx context.Context, url string) (models.Product, error)
}

// HTTPExtractor extracts pages over plain HTTP GET.
type HTTPExtractor struct {
	client *http.Client
}

// Verify *HTTPExtractor satisfies Extractor at compile time.
var _ Extractor = (*HTTPExtractor)(nil)

// NewHTTPExtractor returns an extractor with a bounded request timeout.
func NewHTTPExtractor() *HTTPExtractor {
	return &HTTPExtractor{client: &http.Client{Timeout: 30 * time.Second}}
}

// Extract fetches url and returns the page title, its visible text, and the
// raw HTML content.
func (e *HTTPExtractor) Extract(ctx context.Context, url string) (models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Product{}, fmt.Errorf("archive: build request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return models.Product{}, fmt.Errorf("archive: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Product{}, fmt.Errorf("archive: fetch %s: status %d", url, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Product{}, fmt.Errorf("archive: read body: %w", err)
	}
	title, text := distill(string(raw))
	if title == "" {
		title = url
	}
	return models.Product{Title: title, Text: text, Content: string(raw)}, nil
}

// distill parses HTML and pulls out the <title> plus the visible text,
// skipping script and style subtrees.
func distill(content string) (title, text string) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", content
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(trimmed)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, sb.String()
}

var sanitizePolicy = bluemonday.UGCPolicy()

// SanitizeHTML strips unsafe markup from extracted content so it can be
// stored as a note body.
func SanitizeHTML(content string) string {
	return sanitizePolicy.Sanitize(content)
}
