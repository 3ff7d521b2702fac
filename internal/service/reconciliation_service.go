package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/jcabrerapy/concilia-be/internal/domain"
	"github.com/jcabrerapy/concilia-be/internal/eventbus"
	"github.com/jcabrerapy/concilia-be/internal/parse"
	"github.com/jcabrerapy/concilia-be/internal/recon"
	"github.com/jcabrerapy/concilia-be/pkg/logger"
)

// RunRequest is the raw input tuple of one reconciliation run, as received
// from the caller.
type RunRequest struct {
	OpeningBalance string
	Statement      io.Reader
	StatementName  string
	Vista          io.Reader
	Deferred       io.Reader
}

type ReconciliationService interface {
	CreateRun(ctx context.Context, req RunRequest) (string, error)
	GetRun(ctx context.Context, runID string) (*domain.Run, error)
	GetResult(ctx context.Context, runID string) (*domain.ReconciliationResult, error)
	GetCheckDetails(ctx context.Context, runID string, list domain.CheckListKind, page, perPage int) ([]domain.CheckDetail, int, error)
}

type reconciliationService struct {
	repo     domain.Repository
	eventBus eventbus.EventBus
	logger   *logger.Logger
}

func NewReconciliationService(repo domain.Repository, bus eventbus.EventBus, log *logger.Logger) ReconciliationService {
	return &reconciliationService{
		repo:     repo,
		eventBus: bus,
		logger:   log,
	}
}

// CreateRun parses the three inputs synchronously, so structural failures
// (missing columns, bad opening balance) surface to the caller before a run
// exists. The engine itself executes asynchronously off the bus.
func (s *reconciliationService) CreateRun(ctx context.Context, req RunRequest) (string, error) {
	opening, ok := parse.Amount(req.OpeningBalance)
	if !ok {
		return "", fmt.Errorf("%w: opening balance %q", domain.ErrInvalidInput, req.OpeningBalance)
	}

	statement, err := parse.Statement(req.Statement, req.StatementName)
	if err != nil {
		return "", err
	}

	vista, err := parse.VistaRegistry(req.Vista)
	if err != nil {
		return "", err
	}

	deferred, err := parse.DeferredRegistry(req.Deferred)
	if err != nil {
		return "", err
	}

	runID := uuid.New().String()
	ctx = logger.WithRunID(ctx, runID)

	s.logger.Info(ctx, "Creating reconciliation run",
		"statement_rows", len(statement),
		"vista_checks", len(vista),
		"deferred_checks", len(deferred),
	)

	if err := s.repo.CreateRun(ctx, runID); err != nil {
		s.logger.Error(ctx, "Failed to create run",
			"error", err,
		)
		return "", err
	}

	event := eventbus.Event{
		ID:   runID,
		Type: eventbus.EventTypeRun,
		Payload: eventbus.RunEvent{
			RunID: runID,
			Inputs: recon.Inputs{
				OpeningBalance: opening,
				Statement:      statement,
				Vista:          vista,
				Deferred:       deferred,
			},
		},
		Timestamp: time.Now(),
	}

	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error(ctx, "Failed to publish run event",
			"error", err,
		)
		if failErr := s.repo.FailRun(ctx, runID, err.Error()); failErr != nil {
			s.logger.Error(ctx, "Failed to mark run as failed",
				"error", failErr,
			)
		}
		return "", err
	}

	s.logger.Info(ctx, "Run created, reconciliation started")

	return runID, nil
}

func (s *reconciliationService) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	ctx = logger.WithRunID(ctx, runID)

	run, err := s.repo.GetRun(ctx, runID)
	if err != nil {
		s.logger.Error(ctx, "Failed to get run",
			"error", err,
		)
		return nil, err
	}

	return run, nil
}

func (s *reconciliationService) GetResult(ctx context.Context, runID string) (*domain.ReconciliationResult, error) {
	ctx = logger.WithRunID(ctx, runID)

	s.logger.Debug(ctx, "Getting reconciliation result")

	result, err := s.repo.GetResult(ctx, runID)
	if err != nil {
		s.logger.Debug(ctx, "Result not available",
			"error", err,
		)
		return nil, err
	}

	return result, nil
}

func (s *reconciliationService) GetCheckDetails(ctx context.Context, runID string, list domain.CheckListKind, page, perPage int) ([]domain.CheckDetail, int, error) {
	ctx = logger.WithRunID(ctx, runID)

	s.logger.Debug(ctx, "Getting check details",
		"list", list,
		"page", page,
		"per_page", perPage,
	)

	details, total, err := s.repo.GetCheckDetails(ctx, runID, list, page, perPage)
	if err != nil {
		s.logger.Debug(ctx, "Failed to get check details",
			"list", list,
			"error", err,
		)
		return nil, 0, err
	}

	return details, total, nil
}
