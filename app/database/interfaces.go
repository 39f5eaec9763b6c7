package database

import (
	"context"
	"time"
)

// RequestRepository owns persistence of request records and their status
// transitions. Transitions are conditioned on the expected prior status so a
// race between admin action and the background re-check degrades to a no-op.
type RequestRepository interface {
	// CreateIfUnderQuota inserts the request unless the user already holds
	// limit pending requests. The count and the insert run in one
	// transaction. Returns false (and no error) when the quota is reached.
	CreateIfUnderQuota(ctx context.Context, req *Request, limit int) (bool, error)

	// ReplacePending atomically deletes the old pending request and inserts
	// the replacement for the same user. Returns false when the old record is
	// missing, owned by someone else, or no longer pending.
	ReplacePending(ctx context.Context, oldID string, userID int64, req *Request) (bool, error)

	GetByID(ctx context.Context, id string) (*Request, error)
	ListPending(ctx context.Context, userID int64) ([]Request, error)

	// UpdateStatus transitions a request from one status to another. Returns
	// false when the record is missing or not in the expected prior status.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)

	SetAdminMessageID(ctx context.Context, id string, messageID int) error
	TouchLastChecked(ctx context.Context, id string, checkedAt time.Time) error

	// PendingBatch returns up to limit pending requests ordered by
	// last_checked_at so the least recently examined records come first.
	PendingBatch(ctx context.Context, limit int) ([]Request, error)

	CountByStatus(ctx context.Context) (map[Status]int, error)
}

// CatalogRepository provides read-only access to the file catalog.
type CatalogRepository interface {
	// SearchAllTokens returns files whose filename or caption contains every
	// token, case-insensitively. This is a coarse substring prefilter; the
	// caller applies word-boundary matching on the result.
	SearchAllTokens(ctx context.Context, tokens []string) ([]CatalogFile, error)

	Count(ctx context.Context) (int, error)
}
