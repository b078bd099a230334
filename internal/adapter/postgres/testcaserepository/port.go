// Package testcaserepository contains the PostgreSQL test case store
package testcaserepository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/ports/secondary"
	"gitlab.com/develevate.net/internal/domain"
)

var _ secondary.TestCaseRepository = (*TestCaseRepository)(nil)

// TestCaseRepository implements the TestCaseRepository interface with PostgreSQL
type TestCaseRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewTestCaseRepository creates a new PostgreSQL test case repository
func NewTestCaseRepository(db *sqlx.DB, logger primary.Logger) *TestCaseRepository {
	return &TestCaseRepository{
		db:     db,
		logger: logger,
	}
}

// GetTestCases retrieves the test cases of a problem ordered by position.
// An unknown problem yields an empty slice.
func (r *TestCaseRepository) GetTestCases(ctx context.Context, problemID string) ([]*domain.TestCase, error) {
	tbl := domain.GetTestCaseTable()
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC, %s ASC
	`,
		tbl.ID, tbl.Input, tbl.ExpectedOutput, tbl.IsHidden,
		tbl.TableName(),
		tbl.ProblemID,
		tbl.Position, tbl.ID,
	)

	testCases := make([]*domain.TestCase, 0)
	if err := r.db.SelectContext(ctx, &testCases, query, problemID); err != nil {
		r.logger.Error("Failed to get test cases", "problemId", problemID, "error", err)
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}

	return testCases, nil
}
