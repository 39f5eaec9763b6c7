package database

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"

	"modernc.org/sqlite"

	"github.com/lysyi3m/reelbot/app/normalize"
)

// DB wraps the SQL connection so repositories share one handle.
type DB struct {
	*sql.DB
}

// registerNormalize installs the title normalizer as a deterministic SQL
// function. Catalog queries compare normalized text on both sides; the driver
// registration is process-wide, hence the Once.
var registerNormalize sync.Once

// NewConnection opens (or creates) the SQLite database at path.
func NewConnection(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}

	registerNormalize.Do(func() {
		sqlite.MustRegisterDeterministicScalarFunction("normalize", 1,
			func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				if text, ok := args[0].(string); ok {
					return normalize.Title(text), nil
				}
				return args[0], nil
			})
	})

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}
