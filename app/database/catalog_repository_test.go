package database

import (
	"context"
	"testing"
	"time"

	"github.com/lysyi3m/reelbot/app/normalize"
)

func seedCatalog(t *testing.T, db *DB, files ...CatalogFile) {
	t.Helper()
	for _, file := range files {
		_, err := db.Exec(
			`INSERT INTO catalog_files (file_name, caption, added_at) VALUES (?, ?, ?)`,
			file.FileName, file.Caption, time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			t.Fatalf("Failed to seed catalog file: %v", err)
		}
	}
}

func TestCatalogRepository_SearchAllTokens(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	seedCatalog(t, db,
		CatalogFile{FileName: "Interstellar.2014.1080p.mkv", Caption: "Sci-Fi"},
		CatalogFile{FileName: "Inception.2010.720p.mkv", Caption: ""},
		CatalogFile{FileName: "stellar_photos.zip", Caption: "not a movie"},
	)

	files, err := repo.SearchAllTokens(context.Background(), []string{"interstellar"})
	if err != nil {
		t.Fatalf("SearchAllTokens failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected 1 file, got %d", len(files))
	}
	if files[0].FileName != "Interstellar.2014.1080p.mkv" {
		t.Errorf("Unexpected file: %s", files[0].FileName)
	}
}

func TestCatalogRepository_SearchAllTokens_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	seedCatalog(t, db, CatalogFile{FileName: "INCEPTION.2010.mkv", Caption: ""})

	files, err := repo.SearchAllTokens(context.Background(), []string{"inception"})
	if err != nil {
		t.Fatalf("SearchAllTokens failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected case-insensitive match, got %d files", len(files))
	}
}

func TestCatalogRepository_SearchAllTokens_AllTokensRequired(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	seedCatalog(t, db,
		CatalogFile{FileName: "The.Dark.Knight.2008.mkv", Caption: ""},
		CatalogFile{FileName: "The.Dark.Tower.2017.mkv", Caption: ""},
	)

	files, err := repo.SearchAllTokens(context.Background(), []string{"dark", "knight"})
	if err != nil {
		t.Fatalf("SearchAllTokens failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected 1 file matching both tokens, got %d", len(files))
	}
	if files[0].FileName != "The.Dark.Knight.2008.mkv" {
		t.Errorf("Unexpected file: %s", files[0].FileName)
	}
}

func TestCatalogRepository_SearchAllTokens_MatchesCaption(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	seedCatalog(t, db, CatalogFile{FileName: "movie_4821.mkv", Caption: "Oldboy (2003)"})

	files, err := repo.SearchAllTokens(context.Background(), []string{"oldboy"})
	if err != nil {
		t.Fatalf("SearchAllTokens failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected caption match, got %d files", len(files))
	}
}

func TestCatalogRepository_SearchAllTokens_FoldsDiacritics(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	seedCatalog(t, db, CatalogFile{FileName: "Amélie.2001.1080p.mkv", Caption: ""})

	// Tokens arrive already folded; the stored text is folded by the
	// normalize SQL function
	files, err := repo.SearchAllTokens(context.Background(), []string{"amelie"})
	if err != nil {
		t.Fatalf("SearchAllTokens failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected accented catalog entry to match folded token, got %d files", len(files))
	}
}

func TestCatalogRepository_SearchAllTokens_NonLatinScript(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	seedCatalog(t, db, CatalogFile{FileName: "movie_889.mkv", Caption: "සිංහල උපසිරැසි සමඟ"})

	// Derive the token the matcher would: the SQL function and the Go
	// normalizer must agree on non-Latin text
	tokens := normalize.Tokens(normalize.Title("සිංහල"))
	if len(tokens) == 0 {
		t.Fatal("Expected at least one token from the Sinhala title")
	}

	files, err := repo.SearchAllTokens(context.Background(), tokens)
	if err != nil {
		t.Fatalf("SearchAllTokens failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected Sinhala caption to match, got %d files", len(files))
	}
}

func TestCatalogRepository_SearchAllTokens_EscapesWildcards(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	seedCatalog(t, db, CatalogFile{FileName: "plain.mkv", Caption: ""})

	// A literal "%" token must not degenerate into match-everything
	files, err := repo.SearchAllTokens(context.Background(), []string{"100%"})
	if err != nil {
		t.Fatalf("SearchAllTokens failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no match for escaped wildcard token, got %d files", len(files))
	}
}

func TestCatalogRepository_SearchAllTokens_NoTokens(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t))

	files, err := repo.SearchAllTokens(context.Background(), nil)
	if err != nil {
		t.Fatalf("SearchAllTokens failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no files for empty token list, got %d", len(files))
	}
}

func TestCatalogRepository_Count(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty catalog, got %d", count)
	}

	seedCatalog(t, db,
		CatalogFile{FileName: "one.mkv"},
		CatalogFile{FileName: "two.mkv"},
	)

	count, err = repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 files, got %d", count)
	}
}
