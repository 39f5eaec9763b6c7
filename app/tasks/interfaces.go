package tasks

import (
	"context"

	"github.com/lysyi3m/reelbot/app/database"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// AvailabilityChecker decides whether a title is already present in the file
// catalog.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, title string, year string) bool
}

// Resolver advances a request to a terminal status. Implemented by the
// request lifecycle service.
type Resolver interface {
	Resolve(ctx context.Context, id string, outcome database.Status) (*database.Request, error)
}

// Notifier delivers user-facing fulfilment notices and keeps the admin card
// in sync. Delivery is best-effort; failures are reported, never fatal.
type Notifier interface {
	NotifyRequestFulfilled(ctx context.Context, req *database.Request) error
	UpdateAdminCard(ctx context.Context, req *database.Request) error
}
