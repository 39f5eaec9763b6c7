package database

import (
	"context"
	"fmt"
	"strings"
)

var _ CatalogRepository = (*SQLCatalogRepository)(nil)

// SQLCatalogRepository reads the file catalog. The catalog is populated by the
// uploading side; this service never writes to it.
type SQLCatalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *SQLCatalogRepository {
	return &SQLCatalogRepository{db: db}
}

func (r *SQLCatalogRepository) SearchAllTokens(ctx context.Context, tokens []string) ([]CatalogFile, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	var (
		conditions []string
		args       []any
	)
	// Both sides are normalized: tokens by the caller, stored text through the
	// normalize SQL function registered on the connection. This is only a
	// coarse prefilter; whole-word matching happens in the catalog matcher.
	for _, token := range tokens {
		conditions = append(conditions, `(normalize(file_name) LIKE ? ESCAPE '\' OR normalize(caption) LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(token) + "%"
		args = append(args, pattern, pattern)
	}

	query := `SELECT id, file_name, caption, added_at FROM catalog_files WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	defer rows.Close()

	var files []CatalogFile
	for rows.Next() {
		var (
			file     CatalogFile
			addedRaw string
		)
		if err := rows.Scan(&file.ID, &file.FileName, &file.Caption, &addedRaw); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		if added, err := parseTimeString(addedRaw); err == nil {
			file.AddedAt = added
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog rows: %w", err)
	}
	return files, nil
}

func (r *SQLCatalogRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_files`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count catalog files: %w", err)
	}
	return count, nil
}

// escapeLike neutralizes LIKE wildcards inside a search token.
func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `%`, `\%`)
	value = strings.ReplaceAll(value, `_`, `\_`)
	return value
}
