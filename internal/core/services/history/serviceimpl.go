package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/ports/secondary"
	"gitlab.com/develevate.net/internal/domain"
	"gitlab.com/develevate.net/internal/static/errs"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type HistoryService struct {
	resultRepo secondary.ResultRepository
	logger     primary.Logger
}

func NewHistoryService(resultRepo secondary.ResultRepository, logger primary.Logger) *HistoryService {
	return &HistoryService{
		resultRepo: resultRepo,
		logger:     logger,
	}
}

func (s *HistoryService) ListRuns(ctx context.Context, userID, problemID string, limit int) ([]*domain.RunRecord, error) {
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	records, err := s.resultRepo.ListRuns(ctx, userID, problemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return records, nil
}

// GetRun hides runs of other users behind ErrRunNotFound
func (s *HistoryService) GetRun(ctx context.Context, userID string, runID uuid.UUID) (*domain.RunRecord, error) {
	record, err := s.resultRepo.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if record == nil || record.UserID != userID {
		return nil, fmt.Errorf("%w: %s", errs.ErrRunNotFound, runID)
	}
	return record, nil
}
