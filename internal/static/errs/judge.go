package errs

import "errors"

var (
	ErrSandboxUnavailable = errors.New("execution sandbox unavailable")
	ErrJudgeUnavailable   = errors.New("judge unavailable")
	ErrEmptySubmission    = errors.New("submission code is empty")
	ErrNoTestCases        = errors.New("problem has no test cases")
	ErrProblemNotFound    = errors.New("problem not found")
)

var (
	ErrInvalidTransition = errors.New("invalid run state transition")
	ErrSessionNotFound   = errors.New("run session not found")
	ErrRunNotFound       = errors.New("run not found")
)

// Messages carried by synthesized RuntimeError results
const (
	ExecutionTimeout   = "execution timed out"
	ExecutionCancelled = "execution cancelled"
	MissingResult      = "no result returned for test case"
)
