package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerdictCategory is the classified outcome of one test case
type VerdictCategory string

const (
	VerdictPassed       VerdictCategory = "PASSED"
	VerdictFailed       VerdictCategory = "FAILED"
	VerdictRuntimeError VerdictCategory = "RUNTIME_ERROR"
)

// Verdict represents the result of a submission against a single test case
type Verdict struct {
	Index    int             `json:"index"`
	TestCase TestCase        `json:"testCase"`
	Result   ExecutionResult `json:"result"`
	Passed   bool            `json:"passed"`
	Category VerdictCategory `json:"category"`
}

// RunSummary holds the aggregate counts of one run
type RunSummary struct {
	TotalTests  int `json:"totalTests"`
	TotalPassed int `json:"totalPassed"`
}

// RunResult is the complete, ordered result set of one run
type RunResult struct {
	RunID        uuid.UUID  `json:"runId"`
	SubmissionID uuid.UUID  `json:"submissionId"`
	Verdicts     []Verdict  `json:"verdicts"`
	Summary      RunSummary `json:"summary"`
	CompletedAt  time.Time  `json:"completedAt"`
}

// RunRecord is the persisted history row of a completed run
type RunRecord struct {
	RunID        uuid.UUID `json:"runId" db:"id"`
	SubmissionID uuid.UUID `json:"submissionId" db:"submission_id"`
	UserID       string    `json:"userId" db:"user_id"`
	ProblemID    string    `json:"problemId" db:"problem_id"`
	Language     string    `json:"language" db:"language"`
	TotalTests   int       `json:"totalTests" db:"total_tests"`
	TotalPassed  int       `json:"totalPassed" db:"total_passed"`
	CompletedAt  time.Time `json:"completedAt" db:"completed_at"`
}
