package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gitlab.com/develevate.net/internal/config"
	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/ports/secondary"
	"gitlab.com/develevate.net/internal/core/services/verdict"
	"gitlab.com/develevate.net/internal/domain"
	"gitlab.com/develevate.net/internal/static/errs"
)

var _ IJudgeService = (*JudgeService)(nil)

// JudgeService implements the IJudgeService interface
type JudgeService struct {
	executor     secondary.CodeExecutor
	testCaseRepo secondary.TestCaseRepository
	resultRepo   secondary.ResultRepository
	logger       primary.Logger
	caseTimeout  time.Duration
	maxParallel  int
}

// NewJudgeService creates a new judge service. resultRepo may be nil, in
// which case run history is not recorded.
func NewJudgeService(
	executor secondary.CodeExecutor,
	testCaseRepo secondary.TestCaseRepository,
	resultRepo secondary.ResultRepository,
	logger primary.Logger,
	cfg *config.JudgeConfig,
) *JudgeService {
	s := &JudgeService{
		executor:     executor,
		testCaseRepo: testCaseRepo,
		resultRepo:   resultRepo,
		logger:       logger,
		caseTimeout:  5 * time.Second,
		maxParallel:  4,
	}
	if cfg != nil {
		if cfg.CaseTimeout > 0 {
			s.caseTimeout = cfg.CaseTimeout
		}
		if cfg.MaxParallel > 0 {
			s.maxParallel = cfg.MaxParallel
		}
	}
	return s
}

// LoadTestCases returns the ordered test case set of a problem
func (s *JudgeService) LoadTestCases(ctx context.Context, problemID string) ([]*domain.TestCase, error) {
	testCases, err := s.testCaseRepo.GetTestCases(ctx, problemID)
	if err != nil {
		s.logger.Error("Failed to load test cases", "problemId", problemID, "error", err)
		return nil, fmt.Errorf("failed to load test cases: %w", err)
	}
	if len(testCases) == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrProblemNotFound, problemID)
	}
	return testCases, nil
}

// Run executes the submission against every test case. Executions are
// dispatched concurrently and joined before aggregation; verdicts are
// index-addressed so their order always matches testCases.
func (s *JudgeService) Run(ctx context.Context, submission *domain.Submission, testCases []*domain.TestCase) (*domain.RunResult, error) {
	if submission == nil || strings.TrimSpace(submission.Code) == "" {
		return nil, errs.ErrEmptySubmission
	}
	if len(testCases) == 0 {
		return nil, errs.ErrNoTestCases
	}

	runID := uuid.New()
	s.logger.Info("Starting run",
		"runId", runID,
		"submissionId", submission.ID,
		"problemId", submission.ProblemID,
		"tests", len(testCases))

	results := make([]*domain.ExecutionResult, len(testCases))
	var unavailable atomic.Int32

	var g errgroup.Group
	g.SetLimit(s.maxParallel)
	for i, tc := range testCases {
		g.Go(func() error {
			res, down := s.execute(ctx, submission, tc)
			if down {
				unavailable.Add(1)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		s.logger.Info("Run cancelled", "runId", runID, "error", err)
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	if int(unavailable.Load()) == len(testCases) {
		s.logger.Error("Sandbox unreachable for whole batch", "runId", runID)
		return nil, errs.ErrJudgeUnavailable
	}

	verdicts, summary := verdict.Aggregate(testCases, results)
	result := &domain.RunResult{
		RunID:        runID,
		SubmissionID: submission.ID,
		Verdicts:     verdicts,
		Summary:      summary,
		CompletedAt:  time.Now(),
	}

	s.logger.Info("Run completed",
		"runId", runID,
		"passed", summary.TotalPassed,
		"total", summary.TotalTests)

	return result, nil
}

// execute dispatches one test case under the per-case timeout. It never
// fails: every failure mode is folded into an error result. The second
// return value reports whether the sandbox could not be reached.
func (s *JudgeService) execute(ctx context.Context, submission *domain.Submission, tc *domain.TestCase) (*domain.ExecutionResult, bool) {
	if tc == nil {
		return domain.ErrorResult(errs.MissingResult), false
	}
	if ctx.Err() != nil {
		return domain.ErrorResult(errs.ExecutionCancelled), false
	}

	caseCtx, cancel := context.WithTimeout(ctx, s.caseTimeout)
	defer cancel()

	type outcome struct {
		res *domain.ExecutionResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("executor panic: %v", r)}
			}
		}()
		res, err := s.executor.Execute(caseCtx, submission, tc)
		done <- outcome{res: res, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-caseCtx.Done():
		out = outcome{err: caseCtx.Err()}
	}

	switch {
	case ctx.Err() != nil:
		return domain.ErrorResult(errs.ExecutionCancelled), false
	case out.err == nil && out.res != nil:
		return out.res, false
	case out.err == nil:
		return domain.ErrorResult(errs.MissingResult), false
	case errors.Is(out.err, context.DeadlineExceeded):
		s.logger.Warn("Test case timed out", "testCaseId", tc.ID, "timeout", s.caseTimeout)
		return domain.ErrorResult(errs.ExecutionTimeout), false
	case errors.Is(out.err, errs.ErrSandboxUnavailable):
		s.logger.Error("Sandbox unreachable", "testCaseId", tc.ID, "error", out.err)
		return domain.ErrorResult(out.err.Error()), true
	default:
		s.logger.Warn("Test case execution failed", "testCaseId", tc.ID, "error", out.err)
		return domain.ErrorResult(out.err.Error()), false
	}
}

// Record saves the run summary to history. Without a result repository it
// is a no-op.
func (s *JudgeService) Record(ctx context.Context, submission *domain.Submission, result *domain.RunResult) error {
	if s.resultRepo == nil || submission == nil || result == nil {
		return nil
	}
	record := &domain.RunRecord{
		RunID:        result.RunID,
		SubmissionID: submission.ID,
		UserID:       submission.UserID,
		ProblemID:    submission.ProblemID,
		Language:     submission.Language,
		TotalTests:   result.Summary.TotalTests,
		TotalPassed:  result.Summary.TotalPassed,
		CompletedAt:  result.CompletedAt,
	}
	if err := s.resultRepo.SaveRun(ctx, record); err != nil {
		s.logger.Error("Failed to save run", "runId", result.RunID, "error", err)
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}
