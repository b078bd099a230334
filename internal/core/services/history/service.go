package history

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/develevate.net/internal/domain"
)

// IHistoryService reads the summaries of a user's past runs
type IHistoryService interface {
	// ListRuns returns the latest runs of a user for a problem, newest first
	ListRuns(ctx context.Context, userID, problemID string, limit int) ([]*domain.RunRecord, error)

	// GetRun returns one run of the user
	GetRun(ctx context.Context, userID string, runID uuid.UUID) (*domain.RunRecord, error)
}
