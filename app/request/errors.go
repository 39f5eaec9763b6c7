package request

import (
	"errors"
	"fmt"

	"github.com/lysyi3m/reelbot/app/database"
)

var (
	// ErrNotFound reports that no request exists with the given id.
	ErrNotFound = errors.New("request not found")

	// ErrNotPending reports that a lifecycle operation required a pending
	// request but the record is already in a terminal state (or was
	// concurrently resolved).
	ErrNotPending = errors.New("request is not pending")

	// ErrUnauthorized reports that the acting user does not own the request.
	ErrUnauthorized = errors.New("request belongs to another user")
)

// QuotaExceededError is returned by Submit when the user already holds the
// maximum number of pending requests. It carries the user's current pending
// requests so the caller can offer a replace choice. This is an expected,
// user-recoverable outcome, not a fault.
type QuotaExceededError struct {
	Pending []database.Request
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("pending request quota reached (%d of %d)", len(e.Pending), PendingLimit)
}
