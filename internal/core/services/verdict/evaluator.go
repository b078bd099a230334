// Package verdict classifies execution results and aggregates them into
// an ordered result set.
package verdict

import (
	"strings"

	"gitlab.com/develevate.net/internal/domain"
	"gitlab.com/develevate.net/internal/static/errs"
)

// Normalize strips trailing line terminators. Trailing spaces, case and
// internal whitespace are significant.
func Normalize(output string) string {
	return strings.TrimRight(output, "\r\n")
}

// OutputMatches reports whether actual output matches the expected output
func OutputMatches(expected, actual string) bool {
	return Normalize(expected) == Normalize(actual)
}

// Evaluate classifies one execution result against its test case.
// A nil result is treated as a missing result.
func Evaluate(testCase domain.TestCase, result *domain.ExecutionResult) domain.Verdict {
	if result == nil {
		result = domain.ErrorResult(errs.MissingResult)
	}

	v := domain.Verdict{
		TestCase: testCase,
		Result:   *result,
	}

	var actual string
	if result.ActualOutput != nil {
		actual = *result.ActualOutput
	}

	switch {
	case result.Error != nil:
		v.Category = domain.VerdictRuntimeError
	case OutputMatches(testCase.ExpectedOutput, actual):
		v.Category = domain.VerdictPassed
		v.Passed = true
	default:
		v.Category = domain.VerdictFailed
	}

	return v
}
