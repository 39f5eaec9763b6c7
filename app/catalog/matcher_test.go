package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/lysyi3m/reelbot/app/database"
)

type fakeCatalogRepo struct {
	files []database.CatalogFile
	err   error
}

func (f *fakeCatalogRepo) SearchAllTokens(ctx context.Context, tokens []string) ([]database.CatalogFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.files, nil
}

func (f *fakeCatalogRepo) Count(ctx context.Context) (int, error) {
	return len(f.files), f.err
}

func TestMatcher_IsAvailable_Match(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "Interstellar.2014.1080p.BluRay.mkv", Caption: "Interstellar | Sci-Fi"},
	}}
	matcher := NewMatcher(repo)

	if !matcher.IsAvailable(context.Background(), "Interstellar", "2014") {
		t.Errorf("Expected Interstellar (2014) to be available")
	}
}

func TestMatcher_IsAvailable_YearMismatch(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "Dune.2021.2160p.WEB-DL.mkv", Caption: ""},
	}}
	matcher := NewMatcher(repo)

	if matcher.IsAvailable(context.Background(), "Dune", "1984") {
		t.Errorf("Dune (1984) should not match a 2021 file")
	}
}

func TestMatcher_IsAvailable_NoYearRequested(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "Dune.2021.2160p.WEB-DL.mkv", Caption: ""},
	}}
	matcher := NewMatcher(repo)

	// An empty year means any release year is acceptable
	if !matcher.IsAvailable(context.Background(), "Dune", "") {
		t.Errorf("Expected Dune to be available when no year is requested")
	}
}

func TestMatcher_IsAvailable_WordBoundary(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "Transformers.2007.720p.mkv", Caption: ""},
	}}
	matcher := NewMatcher(repo)

	// "ran" appears inside "transformers" but is not a whole word
	if matcher.IsAvailable(context.Background(), "Ran", "") {
		t.Errorf("'Ran' should not match 'Transformers' on a substring")
	}
}

func TestMatcher_IsAvailable_AllTokensRequired(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "The.Dark.Tower.2017.mkv", Caption: ""},
	}}
	matcher := NewMatcher(repo)

	if matcher.IsAvailable(context.Background(), "The Dark Knight", "") {
		t.Errorf("'The Dark Knight' should not match 'The Dark Tower'")
	}
}

func TestMatcher_IsAvailable_CaptionMatch(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "movie_4821.mkv", Caption: "Oldboy (2003) Korean, with subtitles"},
	}}
	matcher := NewMatcher(repo)

	if !matcher.IsAvailable(context.Background(), "Oldboy", "2003") {
		t.Errorf("Expected caption-only metadata to match")
	}
}

func TestMatcher_IsAvailable_YearFromCaptionFallback(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "oldboy.mkv", Caption: "Oldboy 2003"},
	}}
	matcher := NewMatcher(repo)

	if !matcher.IsAvailable(context.Background(), "Oldboy", "2003") {
		t.Errorf("Expected year to be extracted from caption when filename has none")
	}
}

func TestMatcher_IsAvailable_EmptyTitle(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "anything.mkv", Caption: ""},
	}}
	matcher := NewMatcher(repo)

	if matcher.IsAvailable(context.Background(), "", "") {
		t.Errorf("Empty title should never be available")
	}
	if matcher.IsAvailable(context.Background(), "a an of", "") {
		t.Errorf("Title reducing to no tokens should never be available")
	}
}

func TestMatcher_IsAvailable_FoldsDiacritics(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "Amélie.2001.1080p.mkv", Caption: ""},
	}}
	matcher := NewMatcher(repo)

	if !matcher.IsAvailable(context.Background(), "Amélie", "2001") {
		t.Errorf("Expected accented query to match accented catalog entry")
	}
	if !matcher.IsAvailable(context.Background(), "Amelie", "2001") {
		t.Errorf("Expected plain-ASCII query to match accented catalog entry")
	}
}

func TestMatcher_IsAvailable_NonLatinScript(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "movie_889.mkv", Caption: "සිංහල උපසිරැසි සමඟ 2024"},
	}}
	matcher := NewMatcher(repo)

	if !matcher.IsAvailable(context.Background(), "සිංහල", "") {
		t.Errorf("Expected Sinhala query to match Sinhala caption")
	}
	if matcher.IsAvailable(context.Background(), "හින්දි", "") {
		t.Errorf("Expected non-matching Sinhala query to stay unavailable")
	}
}

func TestMatcher_IsAvailable_RepositoryError(t *testing.T) {
	repo := &fakeCatalogRepo{err: errors.New("database is locked")}
	matcher := NewMatcher(repo)

	// A store failure must read as "not available", never as a match
	if matcher.IsAvailable(context.Background(), "Interstellar", "2014") {
		t.Errorf("Expected unavailable on repository error")
	}
}

func TestMatcher_IsAvailable_ResolutionNotMistakenForYear(t *testing.T) {
	repo := &fakeCatalogRepo{files: []database.CatalogFile{
		{FileName: "Heat.1995.2160p.mkv", Caption: ""},
	}}
	matcher := NewMatcher(repo)

	if !matcher.IsAvailable(context.Background(), "Heat", "1995") {
		t.Errorf("Expected 1995 to be extracted, not the 2160p resolution")
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name     string
		file     database.CatalogFile
		expected string
	}{
		{"filename year", database.CatalogFile{FileName: "Heat.1995.mkv"}, "1995"},
		{"caption fallback", database.CatalogFile{FileName: "heat.mkv", Caption: "Heat 1995"}, "1995"},
		{"filename wins", database.CatalogFile{FileName: "Heat.1995.mkv", Caption: "remastered 2015"}, "1995"},
		{"no year", database.CatalogFile{FileName: "heat.mkv", Caption: "classic"}, ""},
		{"bitrate ignored", database.CatalogFile{FileName: "movie.5000kbps.2010.mkv"}, "2010"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractYear(tt.file); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}
