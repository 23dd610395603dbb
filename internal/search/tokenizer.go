// Package search builds weighted search documents from notes and serves
// ranked full-text queries over an in-memory index.
package search

import (
	"strings"
	"unicode"

	"github.com/orsinium-labs/stopwords"
)

// Tokenizer turns text into a token frequency map. The linguistic rules are
// opaque to the rest of the core; everything downstream works on the counts.
type Tokenizer interface {
	Tokenize(text string) map[string]int
}

// StopwordTokenizer is the default tokenizer: lowercase word splitting with
// English stopword removal.
type StopwordTokenizer struct {
	stop *stopwords.Stopwords
}

// NewTokenizer returns the default English tokenizer.
func NewTokenizer() *StopwordTokenizer {
	return &StopwordTokenizer{stop: stopwords.MustGet("en")}
}

// Tokenize splits on anything that is not a letter or digit, lowercases,
// and drops stopwords.
func (t *StopwordTokenizer) Tokenize(text string) map[string]int {
	counts := make(map[string]int)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		word = strings.ToLower(word)
		if t.stop != nil && t.stop.Contains(word) {
			continue
		}
		counts[word]++
	}
	return counts
}
