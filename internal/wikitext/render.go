package wikitext

import (
	"fmt"
	"net/url"
	"strings"
)

// Render collapses a parsed block into an HTML fragment. Content is emitted
// literally: the wiki is single-user and its notes are trusted input.
func Render(elements []BlockElement) string {
	var sb strings.Builder
	for _, e := range elements {
		e.CollapseTo(&sb)
	}
	return sb.String()
}

// RenderDocument renders every block of a parsed document, one paragraph per
// block, preserving input order.
func RenderDocument(blocks [][]BlockElement) string {
	var sb strings.Builder
	for _, block := range blocks {
		sb.WriteString("<p>")
		for _, e := range block {
			e.CollapseTo(&sb)
		}
		sb.WriteString("</p>")
	}
	return sb.String()
}

// CollapseTo writes the element and its children to target in input order.
func (e BlockElement) CollapseTo(target *strings.Builder) {
	switch e.Kind {
	case KindHeading:
		target.WriteString("<h2>")
		for _, child := range e.Children {
			child.CollapseTo(target)
		}
		target.WriteString("</h2>")
	case KindQuote:
		target.WriteString("<blockquote>")
		for _, child := range e.Children {
			child.CollapseTo(target)
		}
		target.WriteString("</blockquote>")
	case KindPageLink:
		display := e.Alias()
		if display == "" {
			display = e.Target()
		}
		fmt.Fprintf(target, `<a href="%s">%s</a>`, FormatLinks(e.Target()), display)
	case KindHyperLink:
		content := e.Content
		if strings.Contains(content, "youtube.com") || strings.Contains(content, "youtu.be") {
			target.WriteString(transformYoutubeURL(content))
		}
		if strings.Contains(content, "codesandbox.io") {
			target.WriteString(transformCodeSandboxURL(content))
		}
		if strings.Contains(content, "codepen.io") {
			target.WriteString(transformCodepenURL(content))
		}
		if strings.HasSuffix(content, ".mp3") || strings.HasSuffix(content, ".ogg") || strings.HasSuffix(content, ".flac") {
			target.WriteString(transformAudioURL(content))
		}
		if strings.Contains(content, "vimeo.com") {
			target.WriteString(transformVimeoURL(content))
		}
		if strings.Contains(content, "spotify.com") {
			target.WriteString(transformSpotifyURL(content))
		}
		fmt.Fprintf(target, `<a href="%s">%s</a>`, content, content)
	default:
		target.WriteString(e.Content)
	}
}

// FormatLinks resolves a wiki link target to a URL path. External targets
// pass through untouched.
func FormatLinks(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return "/" + url.PathEscape(link)
}

func transformYoutubeURL(link string) string {
	var id string
	switch {
	case strings.Contains(link, "youtu.be/"):
		id = link[strings.Index(link, "youtu.be/")+len("youtu.be/"):]
	case strings.Contains(link, "watch?v="):
		id = link[strings.Index(link, "watch?v=")+len("watch?v="):]
	}
	if i := strings.IndexAny(id, "?&"); i >= 0 {
		id = id[:i]
	}
	return fmt.Sprintf(
		`<iframe width="560" height="315" src="https://www.youtube.com/embed/%s" frameborder="0" allowfullscreen></iframe>`,
		id,
	)
}

func transformCodeSandboxURL(link string) string {
	embed := strings.Replace(link, "/s/", "/embed/", 1)
	return fmt.Sprintf(
		`<iframe src="%s" style="width:100%%;height:500px;border:0;border-radius:4px;overflow:hidden;" sandbox="allow-scripts allow-same-origin"></iframe>`,
		embed,
	)
}

func transformCodepenURL(link string) string {
	embed := strings.Replace(link, "/pen/", "/embed/", 1)
	return fmt.Sprintf(
		`<iframe height="300" style="width:100%%;" scrolling="no" src="%s" frameborder="no" allowtransparency="true" allowfullscreen="true"></iframe>`,
		embed,
	)
}

func transformAudioURL(link string) string {
	return fmt.Sprintf(`<audio src="%s" controls></audio>`, link)
}

func transformVimeoURL(link string) string {
	id := link
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	return fmt.Sprintf(
		`<iframe src="https://player.vimeo.com/video/%s" width="640" height="360" frameborder="0" allowfullscreen></iframe>`,
		id,
	)
}

func transformSpotifyURL(link string) string {
	embed := strings.Replace(link, "open.spotify.com/", "open.spotify.com/embed/", 1)
	return fmt.Sprintf(
		`<iframe src="%s" width="300" height="380" frameborder="0" allowtransparency="true" allow="encrypted-media"></iframe>`,
		embed,
	)
}
