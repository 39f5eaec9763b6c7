package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", server.URL, "TestAgent/1.0")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient("", "https://api.example.com", ""); err == nil {
		t.Errorf("Expected error for empty api key")
	}
	if _, err := NewClient("key", "", ""); err == nil {
		t.Errorf("Expected error for empty base url")
	}
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/multi" {
			t.Errorf("Expected path /search/multi, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("Expected api_key query parameter")
		}
		if r.URL.Query().Get("query") != "inception" {
			t.Errorf("Expected query 'inception', got '%s'", r.URL.Query().Get("query"))
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"page": 1,
			"results": [
				{"id": 27205, "title": "Inception", "media_type": "movie", "release_date": "2010-07-15"},
				{"id": 1, "name": "Some Person", "media_type": "person"},
				{"id": 2, "title": "Adult Title", "media_type": "movie", "adult": true},
				{"id": 93405, "name": "Inception TV", "media_type": "tv", "first_air_date": "2021-09-17"}
			],
			"total_results": 4
		}`)
	})

	candidates, err := client.Search(context.Background(), "inception")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// Person and adult results are filtered out
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}

	if candidates[0].Ref != "27205" || candidates[0].Title != "Inception" ||
		candidates[0].Year != "2010" || candidates[0].Kind != KindMovie {
		t.Errorf("Unexpected first candidate: %+v", candidates[0])
	}
	if candidates[1].Kind != KindTV || candidates[1].Year != "2021" {
		t.Errorf("Unexpected second candidate: %+v", candidates[1])
	}
}

func TestClient_Search_CapsAtFive(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [
			{"id": 1, "title": "A", "media_type": "movie"},
			{"id": 2, "title": "B", "media_type": "movie"},
			{"id": 3, "title": "C", "media_type": "movie"},
			{"id": 4, "title": "D", "media_type": "movie"},
			{"id": 5, "title": "E", "media_type": "movie"},
			{"id": 6, "title": "F", "media_type": "movie"},
			{"id": 7, "title": "G", "media_type": "movie"}
		]}`)
	})

	candidates, err := client.Search(context.Background(), "a")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(candidates) != 5 {
		t.Errorf("Expected 5 candidates, got %d", len(candidates))
	}
}

func TestClient_Search_EmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("No request should be made for an empty query")
	})

	if _, err := client.Search(context.Background(), "   "); err == nil {
		t.Errorf("Expected error for empty query")
	}
}

func TestClient_Search_NoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [], "total_results": 0}`)
	})

	candidates, err := client.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(candidates))
	}
}

func TestClient_Search_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Errorf("Expected error for non-200 response")
	}
}

func TestClient_Details_Movie(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/27205" {
			t.Errorf("Expected path /movie/27205, got %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"id": 27205,
			"title": "Inception",
			"release_date": "2010-07-15",
			"overview": "A thief who steals corporate secrets.",
			"poster_path": "/poster.jpg"
		}`)
	})

	details, err := client.Details(context.Background(), "27205", KindMovie)
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}

	if details.Title != "Inception" {
		t.Errorf("Expected title 'Inception', got '%s'", details.Title)
	}
	if details.Year != "2010" {
		t.Errorf("Expected year '2010', got '%s'", details.Year)
	}
	if details.PosterURL != "https://image.tmdb.org/t/p/w500/poster.jpg" {
		t.Errorf("Unexpected poster URL: %s", details.PosterURL)
	}
}

func TestClient_Details_TV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1396" {
			t.Errorf("Expected path /tv/1396, got %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id": 1396, "name": "Breaking Bad", "first_air_date": "2008-01-20"}`)
	})

	details, err := client.Details(context.Background(), "1396", KindTV)
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}
	if details.Title != "Breaking Bad" || details.Year != "2008" {
		t.Errorf("Unexpected details: %+v", details)
	}
	if details.PosterURL != "" {
		t.Errorf("Expected no poster URL, got '%s'", details.PosterURL)
	}
}

func TestClient_Details_InvalidKind(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("No request should be made for an invalid kind")
	})

	if _, err := client.Details(context.Background(), "1", "person"); err == nil {
		t.Errorf("Expected error for unsupported media kind")
	}
	if _, err := client.Details(context.Background(), "", KindMovie); err == nil {
		t.Errorf("Expected error for empty ref")
	}
}
