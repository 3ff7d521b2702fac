package domain

import "context"

type Repository interface {
	// Run lifecycle
	CreateRun(ctx context.Context, runID string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	CompleteRun(ctx context.Context, runID string, result *ReconciliationResult) error
	FailRun(ctx context.Context, runID string, reason string) error

	// Result retrieval
	GetResult(ctx context.Context, runID string) (*ReconciliationResult, error)
	GetCheckDetails(ctx context.Context, runID string, list CheckListKind, page, perPage int) ([]CheckDetail, int, error)

	// Idempotency tracking
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID string) error
}
