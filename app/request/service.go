package request

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/reelbot/app/database"
)

// PendingLimit is the maximum number of simultaneously pending requests a
// single user may hold.
const PendingLimit = 3

// Submission is the immutable snapshot of what a user asked for.
type Submission struct {
	UserID      int64
	UserName    string
	Title       string
	Year        string
	MediaKind   string
	ExternalRef string
}

// Service enforces the request lifecycle: the pending quota, the
// replace-on-limit policy and the status transitions.
type Service struct {
	repo database.RequestRepository
}

func NewService(repo database.RequestRepository) *Service {
	return &Service{repo: repo}
}

// Submit creates a new pending request. When the user already holds
// PendingLimit pending requests no record is created and a
// *QuotaExceededError listing the current pending requests is returned so the
// caller can offer a replace choice.
func (s *Service) Submit(ctx context.Context, sub Submission) (*database.Request, error) {
	req := newRequest(sub)

	created, err := s.repo.CreateIfUnderQuota(ctx, req, PendingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if !created {
		pending, err := s.repo.ListPending(ctx, sub.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to list pending requests: %w", err)
		}
		return nil, &QuotaExceededError{Pending: pending}
	}

	slog.Info("Request created", "request_id", req.ID, "user_id", req.UserID, "title", req.Title, "year", req.Year)
	return req, nil
}

// Replace removes the user's old pending request and creates a new one in a
// single transaction, so it succeeds at the quota boundary without ever
// exceeding it. It fails with ErrNotPending when the old request was
// concurrently resolved, so an admin completion is never silently dropped.
func (s *Service) Replace(ctx context.Context, oldID string, userID int64, sub Submission) (*database.Request, error) {
	req := newRequest(sub)

	replaced, err := s.repo.ReplacePending(ctx, oldID, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to replace request: %w", err)
	}
	if !replaced {
		return nil, ErrNotPending
	}

	slog.Info("Request replaced", "old_request_id", oldID, "request_id", req.ID, "user_id", userID, "title", req.Title)
	return req, nil
}

// Resolve transitions a pending request to completed or cancelled and returns
// the updated record. A request already in a terminal state is left untouched
// and reported as ErrNotPending, which makes resolution idempotent: a race
// between an admin action and the background re-check degrades to a no-op
// instead of a double notification.
func (s *Service) Resolve(ctx context.Context, id string, outcome database.Status) (*database.Request, error) {
	if !outcome.Terminal() {
		return nil, fmt.Errorf("invalid resolve outcome %q", outcome)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, database.StatusPending, outcome)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve request: %w", err)
	}
	if !updated {
		req, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load request: %w", err)
		}
		if req == nil {
			return nil, ErrNotFound
		}
		return nil, ErrNotPending
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load resolved request: %w", err)
	}
	if req == nil {
		return nil, ErrNotFound
	}

	slog.Info("Request resolved", "request_id", id, "outcome", outcome)
	return req, nil
}

// CancelByOwner cancels a pending request on behalf of the user who created
// it. Requests owned by other users are left untouched.
func (s *Service) CancelByOwner(ctx context.Context, id string, userID int64) (*database.Request, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if req.UserID != userID {
		return nil, ErrUnauthorized
	}

	return s.Resolve(ctx, id, database.StatusCancelled)
}

// ListPending returns the user's pending requests in creation order.
func (s *Service) ListPending(ctx context.Context, userID int64) ([]database.Request, error) {
	pending, err := s.repo.ListPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return pending, nil
}

// AttachAdminReference persists the admin-card message id after the card has
// been sent. The reference is stable afterwards; all later edits to the
// admin-facing view address it.
func (s *Service) AttachAdminReference(ctx context.Context, id string, messageID int) error {
	if err := s.repo.SetAdminMessageID(ctx, id, messageID); err != nil {
		return fmt.Errorf("failed to attach admin reference: %w", err)
	}
	return nil
}

func newRequest(sub Submission) *database.Request {
	now := time.Now().UTC()
	return &database.Request{
		ID:            uuid.NewString(),
		UserID:        sub.UserID,
		UserName:      sub.UserName,
		Title:         sub.Title,
		Year:          sub.Year,
		MediaKind:     sub.MediaKind,
		ExternalRef:   sub.ExternalRef,
		Status:        database.StatusPending,
		CreatedAt:     now,
		LastCheckedAt: now,
	}
}
