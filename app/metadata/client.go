package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// maxCandidates bounds how many search results are offered to the user.
	maxCandidates = 5

	posterBaseURL = "https://image.tmdb.org/t/p/w500"
)

var _ Lookup = (*Client)(nil)

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient creates a TMDB client.
func NewClient(apiKey, baseURL, userAgent string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchResult struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	MediaType    string `json:"media_type"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	Adult        bool   `json:"adult"`
}

type searchResponse struct {
	Page         int            `json:"page"`
	Results      []searchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

// Search performs a TMDB multi search and returns up to five movie or TV
// candidates, adult titles excluded.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	var payload searchResponse
	if err := c.get(ctx, "/search/multi", url.Values{"query": {query}}, &payload); err != nil {
		return nil, fmt.Errorf("tmdb multi search: %w", err)
	}

	var candidates []Candidate
	for _, result := range payload.Results {
		if result.Adult {
			continue
		}
		if result.MediaType != KindMovie && result.MediaType != KindTV {
			continue
		}
		title := strings.TrimSpace(firstNonEmpty(result.Title, result.Name))
		if title == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Ref:   strconv.FormatInt(result.ID, 10),
			Title: title,
			Year:  yearFromDate(firstNonEmpty(result.ReleaseDate, result.FirstAirDate)),
			Kind:  result.MediaType,
		})
		if len(candidates) == maxCandidates {
			break
		}
	}
	return candidates, nil
}

// Details fetches the descriptive fields for a single title by TMDB id.
func (c *Client) Details(ctx context.Context, ref string, kind string) (*Details, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("ref must not be empty")
	}
	if kind != KindMovie && kind != KindTV {
		return nil, fmt.Errorf("unsupported media kind %q", kind)
	}

	var result searchResult
	if err := c.get(ctx, "/"+kind+"/"+url.PathEscape(ref), nil, &result); err != nil {
		return nil, fmt.Errorf("tmdb %s details: %w", kind, err)
	}

	title := strings.TrimSpace(firstNonEmpty(result.Title, result.Name))
	if title == "" {
		return nil, errors.New("tmdb details missing title")
	}

	details := &Details{
		Title:    title,
		Year:     yearFromDate(firstNonEmpty(result.ReleaseDate, result.FirstAirDate)),
		Overview: strings.TrimSpace(result.Overview),
	}
	if result.PosterPath != "" {
		details.PosterURL = posterBaseURL + result.PosterPath
	}
	return details, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func yearFromDate(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
