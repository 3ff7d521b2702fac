package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jcabrerapy/concilia-be/internal/domain"
)

const dateLayout = "02/01/2006"

// MemoryStore keeps run records and completed results in process memory.
// Runs are short-lived batches; nothing outlives the process.
type MemoryStore struct {
	runs            map[string]*domain.Run
	results         map[string]*domain.ReconciliationResult
	processedEvents map[string]bool
	mu              sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:            make(map[string]*domain.Run),
		results:         make(map[string]*domain.ReconciliationResult),
		processedEvents: make(map[string]bool),
	}
}

func (s *MemoryStore) CreateRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[runID] = &domain.Run{
		ID:        runID,
		Status:    domain.RunStatusProcessing,
		CreatedAt: time.Now(),
	}

	return nil
}

func (s *MemoryStore) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, domain.ErrRunNotFound
	}

	copied := *run
	return &copied, nil
}

func (s *MemoryStore) CompleteRun(ctx context.Context, runID string, result *domain.ReconciliationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.runs[runID]
	if !exists {
		return domain.ErrRunNotFound
	}

	now := time.Now()
	run.Status = domain.RunStatusCompleted
	run.CompletedAt = &now
	s.results[runID] = result

	return nil
}

func (s *MemoryStore) FailRun(ctx context.Context, runID string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.runs[runID]
	if !exists {
		return domain.ErrRunNotFound
	}

	now := time.Now()
	run.Status = domain.RunStatusFailed
	run.Error = reason
	run.CompletedAt = &now

	return nil
}

func (s *MemoryStore) GetResult(ctx context.Context, runID string) (*domain.ReconciliationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, domain.ErrRunNotFound
	}
	if run.Status == domain.RunStatusFailed {
		return nil, domain.ErrRunFailed
	}

	result, exists := s.results[runID]
	if !exists {
		return nil, domain.ErrResultNotReady
	}

	return result, nil
}

func (s *MemoryStore) GetCheckDetails(ctx context.Context, runID string, list domain.CheckListKind, page, perPage int) ([]domain.CheckDetail, int, error) {
	result, err := s.GetResult(ctx, runID)
	if err != nil {
		return nil, 0, err
	}

	var details []domain.CheckDetail
	switch list {
	case domain.CheckListVista:
		details = recordDetails(result.OutstandingVista)
	case domain.CheckListDeferred:
		details = recordDetails(result.OutstandingDeferred)
	case domain.CheckListUnregistered:
		details = eventDetails(result.Unregistered)
	default:
		return nil, 0, domain.ErrUnknownCheckList
	}

	total := len(details)

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	start := (page - 1) * perPage
	end := start + perPage

	if start >= total {
		return []domain.CheckDetail{}, total, nil
	}
	if end > total {
		end = total
	}

	return details[start:end], total, nil
}

func recordDetails(records []domain.CheckRecord) []domain.CheckDetail {
	details := make([]domain.CheckDetail, 0, len(records))
	for _, rec := range records {
		date := ""
		if rec.Date != nil {
			date = rec.Date.Format(dateLayout)
		}
		details = append(details, domain.CheckDetail{
			Date:   date,
			Number: rec.Number,
			Payee:  rec.Payee,
			Amount: rec.Amount,
		})
	}
	return details
}

func eventDetails(events []domain.CheckEvent) []domain.CheckDetail {
	details := make([]domain.CheckDetail, 0, len(events))
	for _, ev := range events {
		details = append(details, domain.CheckDetail{
			Date:        ev.Date,
			Number:      ev.Number,
			Amount:      ev.Amount,
			Description: ev.Description,
		})
	}
	return details
}

func (s *MemoryStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.processedEvents[eventID], nil
}

func (s *MemoryStore) MarkEventProcessed(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processedEvents[eventID] = true

	return nil
}
