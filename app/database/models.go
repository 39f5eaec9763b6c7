package database

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a media request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusCompleted,
	StatusCancelled,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// Terminal reports whether a status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Request is a durable record of a user's ask for a not-yet-available title.
// Identity and the requested title snapshot are immutable after creation;
// only status, admin_message_id and last_checked_at change afterwards.
type Request struct {
	ID             string // UUID
	UserID         int64  // Telegram user identifier
	UserName       string
	Title          string
	Year           string // 4-digit release year, may be empty
	MediaKind      string // "movie" or "tv"
	ExternalRef    string // TMDB identifier
	Status         Status
	AdminMessageID int // Telegram message id of the admin card, 0 until attached
	CreatedAt      time.Time
	LastCheckedAt  time.Time
}

// CatalogFile is a record of an already-available media file. The catalog is
// maintained outside this service and is read-only here.
type CatalogFile struct {
	ID       int64
	FileName string
	Caption  string
	AddedAt  time.Time
}
