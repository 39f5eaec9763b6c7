// Package normalize canonicalizes free-text titles and catalog text. The same
// transformation is applied to query titles, in-memory catalog text and, via a
// SQL function, to stored catalog rows, so matching stays symmetric.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes characters and drops combining marks so accented
// titles compare equal to their plain-ASCII spellings ("Amélie" == "Amelie").
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Title canonicalizes a free-text title for comparison: folds diacritics,
// lowercases, replaces punctuation with spaces and collapses whitespace.
func Title(raw string) string {
	folded, _, err := transform.String(foldTransformer, raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits a normalized title into match tokens, dropping short
// connector words that would match almost anything.
func Tokens(normalized string) []string {
	var tokens []string
	for _, field := range strings.Fields(normalized) {
		if len(field) <= 2 {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}
