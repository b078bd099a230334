package secondary

import (
	"context"

	"gitlab.com/develevate.net/internal/domain"
)

type CodeExecutor interface {
	// Execute runs the submission against a single test case.
	// Sandbox-side failures are reported through ExecutionResult.Error; the
	// returned error is reserved for not being able to reach the sandbox.
	Execute(ctx context.Context, submission *domain.Submission, testCase *domain.TestCase) (*domain.ExecutionResult, error)
}
