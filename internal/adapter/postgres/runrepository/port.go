// Package runrepository stores the history of completed runs in PostgreSQL
package runrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/ports/secondary"
	"gitlab.com/develevate.net/internal/domain"
)

var _ secondary.ResultRepository = (*RunRepository)(nil)

// RunRepository implements the ResultRepository interface with PostgreSQL
type RunRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB, logger primary.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// SaveRun saves a run record
func (r *RunRepository) SaveRun(ctx context.Context, record *domain.RunRecord) error {
	query := `
		INSERT INTO practice_runs (
			id, submission_id, user_id, problem_id, language,
			total_tests, total_passed, completed_at
		) VALUES (
			:id, :submission_id, :user_id, :problem_id, :language,
			:total_tests, :total_passed, :completed_at
		)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		r.logger.Error("Failed to save run", "runId", record.RunID, "error", err)
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetRun retrieves a run record by ID
func (r *RunRepository) GetRun(ctx context.Context, runID uuid.UUID) (*domain.RunRecord, error) {
	query := `
		SELECT id, submission_id, user_id, problem_id, language,
			   total_tests, total_passed, completed_at
		FROM practice_runs
		WHERE id = $1
	`

	var record domain.RunRecord
	if err := r.db.GetContext(ctx, &record, query, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get run", "runId", runID, "error", err)
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &record, nil
}

// ListRuns retrieves the latest runs of a user for a problem
func (r *RunRepository) ListRuns(ctx context.Context, userID, problemID string, limit int) ([]*domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, submission_id, user_id, problem_id, language,
			   total_tests, total_passed, completed_at
		FROM practice_runs
		WHERE user_id = $1 AND problem_id = $2
		ORDER BY completed_at DESC
		LIMIT $3
	`

	records := make([]*domain.RunRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, userID, problemID, limit); err != nil {
		r.logger.Error("Failed to list runs", "userId", userID, "problemId", problemID, "error", err)
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return records, nil
}
