package judge

import (
	"context"

	"gitlab.com/develevate.net/internal/domain"
)

// IJudgeService runs submissions against test cases and produces verdicts
type IJudgeService interface {
	// LoadTestCases returns the ordered test case set of a problem
	LoadTestCases(ctx context.Context, problemID string) ([]*domain.TestCase, error)

	// Run executes the submission against every test case and returns the
	// ordered result set once all executions have settled
	Run(ctx context.Context, submission *domain.Submission, testCases []*domain.TestCase) (*domain.RunResult, error)

	// Record stores the summary of a run that was shown to the user
	Record(ctx context.Context, submission *domain.Submission, result *domain.RunResult) error
}
