package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/develevate.net/internal/domain"
)

// ResultRepository defines the interface for storing and retrieving run history
type ResultRepository interface {
	// SaveRun saves the summary of a completed run
	SaveRun(ctx context.Context, record *domain.RunRecord) error

	// GetRun retrieves a run record by run ID
	GetRun(ctx context.Context, runID uuid.UUID) (*domain.RunRecord, error)

	// ListRuns retrieves the latest runs of a user for a problem
	ListRuns(ctx context.Context, userID, problemID string, limit int) ([]*domain.RunRecord, error)
}
