package secondary

import (
	"context"

	"gitlab.com/develevate.net/internal/domain"
)

// TestCaseRepository supplies the ordered test case set of a problem
type TestCaseRepository interface {
	// GetTestCases returns the test cases of a problem in submission order
	GetTestCases(ctx context.Context, problemID string) ([]*domain.TestCase, error)
}
