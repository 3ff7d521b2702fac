package eventbus

import (
	"context"
	"fmt"

	"github.com/jcabrerapy/concilia-be/internal/domain"
	"github.com/jcabrerapy/concilia-be/internal/recon"
	"github.com/jcabrerapy/concilia-be/pkg/logger"
)

// RunConsumer executes reconciliation runs off the bus. Idempotency by
// event ID: a redelivered run event must not recompute or overwrite a
// completed run.
type RunConsumer struct {
	engine      *recon.Engine
	repo        domain.Repository
	logger      *logger.Logger
	workerCount int
}

func NewRunConsumer(engine *recon.Engine, repo domain.Repository, log *logger.Logger, workerCount int) *RunConsumer {
	return &RunConsumer{
		engine:      engine,
		repo:        repo,
		logger:      log,
		workerCount: workerCount,
	}
}

func (rc *RunConsumer) Consume(ctx context.Context, event Event) error {
	processed, err := rc.repo.IsEventProcessed(ctx, event.ID)
	if err != nil {
		rc.logger.Error(ctx, "Failed to check event processed status",
			"event_id", event.ID,
			"error", err,
		)
		return err
	}
	if processed {
		rc.logger.Debug(ctx, "Event already processed, skipping",
			"event_id", event.ID,
		)
		return nil
	}

	payload, ok := event.Payload.(RunEvent)
	if !ok {
		rc.logger.Error(ctx, "Invalid payload type for run event",
			"event_id", event.ID,
		)
		return fmt.Errorf("invalid payload type")
	}

	ctx = logger.WithRunID(ctx, payload.RunID)

	rc.logger.Info(ctx, "Executing reconciliation run",
		"statement_rows", len(payload.Inputs.Statement),
		"vista_checks", len(payload.Inputs.Vista),
		"deferred_checks", len(payload.Inputs.Deferred),
	)

	result := rc.engine.Reconcile(payload.Inputs)

	if err := rc.repo.CompleteRun(ctx, payload.RunID, result); err != nil {
		rc.logger.Error(ctx, "Failed to store reconciliation result",
			"event_id", event.ID,
			"error", err,
		)
		return err
	}

	if err := rc.repo.MarkEventProcessed(ctx, event.ID); err != nil {
		rc.logger.Error(ctx, "Failed to mark event as processed",
			"event_id", event.ID,
			"error", err,
		)
		return err
	}

	rc.logger.Info(ctx, "Reconciliation run completed",
		"difference", result.Difference,
		"outstanding_vista", len(result.OutstandingVista),
		"outstanding_deferred", len(result.OutstandingDeferred),
		"unregistered", len(result.Unregistered),
	)

	return nil
}

func (rc *RunConsumer) GetWorkerCount() int {
	return rc.workerCount
}
