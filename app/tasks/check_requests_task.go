package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/reelbot/app/database"
	"github.com/lysyi3m/reelbot/app/request"
)

// CheckRequestsTask is one reconciliation pass: it re-evaluates a batch of
// pending requests against the catalog and completes the ones whose files
// have appeared since the last check.
type CheckRequestsTask struct {
	Task
	requestRepo database.RequestRepository
	checker     AvailabilityChecker
	resolver    Resolver
	notifier    Notifier
	batchSize   int
}

func NewCheckRequestsTask(requestRepo database.RequestRepository, checker AvailabilityChecker,
	resolver Resolver, notifier Notifier, batchSize int) *CheckRequestsTask {
	return &CheckRequestsTask{
		Task:        NewTask(TaskTypeCheckRequests, "pending_requests"),
		requestRepo: requestRepo,
		checker:     checker,
		resolver:    resolver,
		notifier:    notifier,
		batchSize:   batchSize,
	}
}

func (t *CheckRequestsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	batch, err := t.requestRepo.PendingBatch(ctx, t.batchSize)
	if err != nil {
		return fmt.Errorf("failed to load pending batch: %w", err)
	}
	if len(batch) == 0 {
		slog.Debug("No pending requests to check")
		return nil
	}

	fulfilled := 0
	for _, req := range batch {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Each record is processed in isolation: a fault on one must not
		// stop the rest of the batch.
		if t.checkOne(ctx, req) {
			fulfilled++
		}
	}

	slog.Info("Task completed",
		"type", "CheckRequests",
		"duration", t.GetDuration(),
		"checked", len(batch),
		"fulfilled", fulfilled)

	return nil
}

// checkOne re-evaluates a single pending request and reports whether it was
// fulfilled during this pass.
func (t *CheckRequestsTask) checkOne(ctx context.Context, req database.Request) bool {
	available := t.checker.IsAvailable(ctx, req.Title, req.Year)

	// The check moves forward regardless of outcome so the next pass does not
	// immediately re-select the same unmatched record.
	if err := t.requestRepo.TouchLastChecked(ctx, req.ID, time.Now().UTC()); err != nil {
		slog.Warn("Failed to advance last checked time", "request_id", req.ID, "error", err)
	}

	if !available {
		return false
	}

	resolved, err := t.resolver.Resolve(ctx, req.ID, database.StatusCompleted)
	if err != nil {
		if errors.Is(err, request.ErrNotPending) || errors.Is(err, request.ErrNotFound) {
			// Already resolved by an admin (or replaced) between the batch
			// read and now. Nothing to notify.
			slog.Debug("Request no longer pending, skipping", "request_id", req.ID)
			return false
		}
		slog.Error("Failed to complete matched request", "request_id", req.ID, "title", req.Title, "error", err)
		return false
	}

	if err := t.notifier.NotifyRequestFulfilled(ctx, resolved); err != nil {
		slog.Warn("Failed to notify user of fulfilled request", "request_id", resolved.ID, "user_id", resolved.UserID, "error", err)
	}

	// The admin card edit is best-effort: the message may have been deleted.
	if err := t.notifier.UpdateAdminCard(ctx, resolved); err != nil {
		slog.Warn("Failed to update admin card", "request_id", resolved.ID, "admin_message_id", resolved.AdminMessageID, "error", err)
	}

	slog.Info("Request fulfilled by catalog match", "request_id", resolved.ID, "title", resolved.Title, "year", resolved.Year)
	return true
}
