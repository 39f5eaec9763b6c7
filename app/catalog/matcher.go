package catalog

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lysyi3m/reelbot/app/database"
	"github.com/lysyi3m/reelbot/app/normalize"
)

// yearPattern extracts a plausible release year from free text. Filenames
// often carry several 4-digit runs (resolutions, bitrates); anchoring to
// 19xx/20xx keeps those out.
var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// Matcher decides whether a requested title is already present in the file
// catalog. It is read-only against the catalog and holds no state of its own.
type Matcher struct {
	repo database.CatalogRepository
}

func NewMatcher(repo database.CatalogRepository) *Matcher {
	return &Matcher{repo: repo}
}

// IsAvailable reports whether the catalog holds a file matching the title and,
// when year is non-empty, the release year. Titles are tokenized and every
// token must appear as a whole word, so a short title like "Ran" never
// matches "Transformers". A catalog query failure is treated as "not
// available": a transient store error must never fabricate availability, and
// it must not crash the caller either.
func (m *Matcher) IsAvailable(ctx context.Context, title string, year string) bool {
	tokens := normalize.Tokens(normalize.Title(title))
	if len(tokens) == 0 {
		// A title that reduces to nothing cannot be confidently matched.
		return false
	}

	files, err := m.repo.SearchAllTokens(ctx, tokens)
	if err != nil {
		slog.Error("Catalog query failed, treating as not available", "title", title, "error", err)
		return false
	}

	for _, file := range files {
		if !containsAllTokens(tokens, normalize.Title(file.FileName)) &&
			!containsAllTokens(tokens, normalize.Title(file.Caption)) {
			continue
		}

		if year == "" {
			return true
		}
		if extractYear(file) == year {
			return true
		}
	}

	return false
}

// containsAllTokens reports whether every token appears as a whole field of
// the normalized, space-delimited text. Field equality gives whole-word
// semantics in any script, where ASCII word-boundary regexes do not.
func containsAllTokens(tokens []string, text string) bool {
	if text == "" {
		return false
	}
	fields := strings.Fields(text)
	present := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		present[field] = struct{}{}
	}
	for _, token := range tokens {
		if _, ok := present[token]; !ok {
			return false
		}
	}
	return true
}

// extractYear pulls a 19xx/20xx year out of the filename, falling back to the
// caption. First match wins; a filename carrying both a remake reference and
// a release year is a known precision limit.
func extractYear(file database.CatalogFile) string {
	if year := yearPattern.FindString(file.FileName); year != "" {
		return year
	}
	return yearPattern.FindString(file.Caption)
}
