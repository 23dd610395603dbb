// Package wikitext parses raw note text into a tree of typed block elements
// and renders that tree to HTML fragments.
package wikitext

import (
	"fmt"
	"log/slog"
	"strings"
)

// Kind discriminates the block element variants.
type Kind int

const (
	KindText Kind = iota
	KindEmptySpace
	KindHeading
	KindQuote
	KindPageLink
	KindHyperLink
)

// BlockElement is one node of a parsed block. Heading and Quote carry
// children; the other variants carry their literal content. PageLink content
// is the raw inner text of the brackets, alias separator included.
type BlockElement struct {
	Kind     Kind
	Content  string
	Children []BlockElement
}

// Text returns a text element over the given span.
func Text(s string) BlockElement { return BlockElement{Kind: KindText, Content: s} }

// EmptySpace returns the single logical space element.
func EmptySpace() BlockElement { return BlockElement{Kind: KindEmptySpace, Content: " "} }

// Heading wraps children in a heading element.
func Heading(children ...BlockElement) BlockElement {
	return BlockElement{Kind: KindHeading, Children: children}
}

// Quote wraps children in a quote element.
func Quote(children ...BlockElement) BlockElement {
	return BlockElement{Kind: KindQuote, Children: children}
}

// PageLink returns a page link over the raw bracket content.
func PageLink(content string) BlockElement { return BlockElement{Kind: KindPageLink, Content: content} }

// HyperLink returns a hyperlink element.
func HyperLink(url string) BlockElement { return BlockElement{Kind: KindHyperLink, Content: url} }

// Alias returns the display alias of a page link, or "" when none is set.
// The first |-separated segment is the alias, the second the link target.
func (e BlockElement) Alias() string {
	if e.Kind != KindPageLink {
		return ""
	}
	if i := strings.IndexByte(e.Content, '|'); i >= 0 {
		return e.Content[:i]
	}
	return ""
}

// Target returns the link target of a page link.
func (e BlockElement) Target() string {
	if e.Kind != KindPageLink {
		return ""
	}
	if i := strings.IndexByte(e.Content, '|'); i >= 0 {
		return e.Content[i+1:]
	}
	return e.Content
}

// subParser consumes the start of slice and returns the parsed element plus
// the number of positions the outer loop should skip before the next
// dispatch. The outer loop itself steps one position per iteration, so the
// advance is the consumed width minus one.
type subParser func(slice []rune) (BlockElement, int, error)

// Parse turns one logical block (no paragraph break inside) into its ordered
// element sequence. Parsing never fails as a whole: an internal slicing fault
// is logged and the elements accumulated so far are returned.
func Parse(block []byte) []BlockElement {
	return iterateSlice([]rune(string(block)))
}

func iterateSlice(input []rune) []BlockElement {
	var elements []BlockElement
	for index := 0; index < len(input); {
		var parse subParser
		switch input[index] {
		case '#':
			// Only a heading when the sigil opens the slice.
			if index == 0 {
				parse = parseHeading
			} else {
				parse = parseText
			}
		case '[':
			parse = parseLink
		case ' ', '\t':
			parse = parseEmptySpace
		case '>':
			if index == 0 {
				parse = parseQuote
			} else {
				parse = parseText
			}
		default:
			parse = parseText
		}

		slice, err := cut(input, index)
		if err != nil {
			slog.Warn("wikitext: failed to slice input", slog.String("error", err.Error()))
			break
		}
		element, advance, err := parse(slice)
		if err != nil {
			slog.Warn("wikitext: failed to parse block", slog.String("error", err.Error()))
			break
		}
		elements = append(elements, element)
		index += advance + 1
	}
	return elements
}

// parseHeading skips the sigil and any indentation, then parses the rest of
// the slice as the heading's children. It consumes the whole slice.
func parseHeading(slice []rune) (BlockElement, int, error) {
	children, err := parseSigilBody(slice)
	if err != nil {
		return BlockElement{}, 0, err
	}
	return BlockElement{Kind: KindHeading, Children: children}, len(slice), nil
}

// parseQuote is parseHeading with a > trigger and a blockquote wrapper.
func parseQuote(slice []rune) (BlockElement, int, error) {
	children, err := parseSigilBody(slice)
	if err != nil {
		return BlockElement{}, 0, err
	}
	return BlockElement{Kind: KindQuote, Children: children}, len(slice), nil
}

func parseSigilBody(slice []rune) ([]BlockElement, error) {
	for i := 1; i < len(slice); i++ {
		switch slice[i] {
		case ' ', '\t':
			continue
		}
		rest, err := cut(slice, i)
		if err != nil {
			return nil, err
		}
		return iterateSlice(rest), nil
	}
	return nil, nil
}

// parseEmptySpace collapses the position into a single logical space and
// advances zero extra positions; the outer loop's own step provides forward
// progress. Runs of whitespace therefore produce one element per character.
func parseEmptySpace(_ []rune) (BlockElement, int, error) {
	return EmptySpace(), 0, nil
}

// parseLink consumes from [ through the first matching ]], treating an extra
// leading [ as a no-op skip so [[x]] parses correctly. The advance is the
// inner length plus a fixed overhead of 3; this holds for the bracket shapes
// the wiki produces but is not a general computation over nesting depths.
func parseLink(slice []rune) (BlockElement, int, error) {
	var link []rune
	endDetected := false
	for i := 1; i < len(slice); i++ {
		switch slice[i] {
		case '[':
		case ']':
			if endDetected {
				return PageLink(string(link)), len(link) + 3, nil
			}
			endDetected = true
		default:
			link = append(link, slice[i])
		}
	}
	return PageLink(string(link)), len(link) + 3, nil
}

// parseText consumes up to the next whitespace character. Spans that look
// like URLs are reclassified as hyperlinks.
func parseText(slice []rune) (BlockElement, int, error) {
	content, end, err := untilEmptySpace(slice)
	if err != nil {
		return BlockElement{}, 0, err
	}
	if strings.HasPrefix(content, "http://") || strings.HasPrefix(content, "https://") {
		return HyperLink(content), end, nil
	}
	return Text(content), end, nil
}

func untilEmptySpace(slice []rune) (string, int, error) {
	end := 0
	for i := 0; i < len(slice); i++ {
		switch slice[i] {
		case ' ', '\t', '\r', '\n':
			return string(slice[:end+1]), end, nil
		}
		end = i
	}
	if end+1 > len(slice) {
		return "", 0, fmt.Errorf("wikitext: span end %d past slice length %d", end+1, len(slice))
	}
	return string(slice[:end+1]), end, nil
}

func cut(input []rune, at int) ([]rune, error) {
	if at < 0 || at > len(input) {
		return nil, fmt.Errorf("wikitext: cut at %d outside slice of length %d", at, len(input))
	}
	return input[at:], nil
}

// ParseDocument splits a note body on blank lines and parses each block.
func ParseDocument(body string) [][]BlockElement {
	var blocks [][]BlockElement
	for _, block := range splitBlocks(body) {
		blocks = append(blocks, Parse([]byte(block)))
	}
	return blocks
}

// splitBlocks breaks a body into contiguous runs of non-blank lines.
func splitBlocks(body string) []string {
	var blocks []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

// Outlinks collects every page-link target in a parsed document, in order.
func Outlinks(blocks [][]BlockElement) []string {
	var out []string
	for _, block := range blocks {
		out = appendOutlinks(out, block)
	}
	return out
}

func appendOutlinks(out []string, elements []BlockElement) []string {
	for _, e := range elements {
		switch e.Kind {
		case KindPageLink:
			out = append(out, e.Target())
		case KindHeading, KindQuote:
			out = appendOutlinks(out, e.Children)
		}
	}
	return out
}
