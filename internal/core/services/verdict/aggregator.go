package verdict

import (
	"gitlab.com/develevate.net/internal/domain"
)

// Aggregate evaluates results[i] against testCases[i] and returns exactly one
// verdict per test case in input order, plus the run summary. Results that
// are nil or missing from the slice become RuntimeError verdicts.
func Aggregate(testCases []*domain.TestCase, results []*domain.ExecutionResult) ([]domain.Verdict, domain.RunSummary) {
	verdicts := make([]domain.Verdict, 0, len(testCases))
	summary := domain.RunSummary{TotalTests: len(testCases)}

	for i, tc := range testCases {
		var result *domain.ExecutionResult
		if i < len(results) {
			result = results[i]
		}

		var testCase domain.TestCase
		if tc != nil {
			testCase = *tc
		}

		v := Evaluate(testCase, result)
		v.Index = i
		if v.Category == domain.VerdictPassed {
			summary.TotalPassed++
		}
		verdicts = append(verdicts, v)
	}

	return verdicts, summary
}
