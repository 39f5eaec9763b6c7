package metadata

import "context"

// MediaKind distinguishes the TMDB media types this service handles.
const (
	KindMovie = "movie"
	KindTV    = "tv"
)

// Candidate is a single search result offered to the user for selection.
type Candidate struct {
	Ref   string // TMDB identifier
	Title string
	Year  string // 4-digit release year, may be empty
	Kind  string // KindMovie or KindTV
}

// Details carries the descriptive fields rendered on a detail card.
type Details struct {
	Title     string
	Year      string
	Overview  string
	PosterURL string
}

// Lookup is the metadata provider surface consumed by the bot. Failures
// surface as errors, never as panics; callers degrade to "no candidates" or
// abort the details-dependent flow with a generic user message.
type Lookup interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
	Details(ctx context.Context, ref string, kind string) (*Details, error)
}
