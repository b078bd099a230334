package verdict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/develevate.net/internal/core/services/verdict"
	"gitlab.com/develevate.net/internal/domain"
	"gitlab.com/develevate.net/internal/static/errs"
)

func strPtr(s string) *string { return &s }

func TestEvaluateComparisonPolicy(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		want     domain.VerdictCategory
	}{
		{name: "exact", expected: "5", actual: "5", want: domain.VerdictPassed},
		{name: "trailing newline on actual", expected: "5", actual: "5\n", want: domain.VerdictPassed},
		{name: "trailing newline on expected", expected: "5\n", actual: "5", want: domain.VerdictPassed},
		{name: "crlf", expected: "1\n2", actual: "1\n2\r\n", want: domain.VerdictPassed},
		{name: "empty expected", expected: "", actual: "\n", want: domain.VerdictPassed},
		{name: "case significant", expected: "Yes", actual: "yes", want: domain.VerdictFailed},
		{name: "internal spacing significant", expected: "1 2", actual: "1  2", want: domain.VerdictFailed},
		{name: "trailing space significant", expected: "5", actual: "5 ", want: domain.VerdictFailed},
		{name: "leading newline significant", expected: "5", actual: "\n5", want: domain.VerdictFailed},
		{name: "wrong answer", expected: "5", actual: "6\n", want: domain.VerdictFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := domain.TestCase{ID: "1", Input: "2 3", ExpectedOutput: tt.expected}
			v := verdict.Evaluate(tc, domain.OutputResult(tt.actual, nil, nil))
			assert.Equal(t, tt.want, v.Category)
			assert.Equal(t, tt.want == domain.VerdictPassed, v.Passed)
		})
	}
}

func TestEvaluatePassedExample(t *testing.T) {
	tc := domain.TestCase{ID: "1", Input: "2 3", ExpectedOutput: "5"}
	v := verdict.Evaluate(tc, &domain.ExecutionResult{ActualOutput: strPtr("5\n")})

	assert.True(t, v.Passed)
	assert.Equal(t, domain.VerdictPassed, v.Category)
	assert.Equal(t, tc, v.TestCase)
}

func TestEvaluateErrorWinsOverOutput(t *testing.T) {
	tc := domain.TestCase{ID: "1", Input: "2 3", ExpectedOutput: "5"}
	v := verdict.Evaluate(tc, &domain.ExecutionResult{
		ActualOutput: strPtr("5"),
		Error:        strPtr("timeout"),
	})

	assert.False(t, v.Passed)
	assert.Equal(t, domain.VerdictRuntimeError, v.Category)
	require.NotNil(t, v.Result.Error)
	assert.Equal(t, "timeout", *v.Result.Error)
}

func TestEvaluateNilResultIsRuntimeError(t *testing.T) {
	v := verdict.Evaluate(domain.TestCase{ID: "1", ExpectedOutput: ""}, nil)

	assert.False(t, v.Passed)
	assert.Equal(t, domain.VerdictRuntimeError, v.Category)
	require.NotNil(t, v.Result.Error)
	assert.Equal(t, errs.MissingResult, *v.Result.Error)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	tc := domain.TestCase{ID: "7", Input: "x", ExpectedOutput: "abc"}
	res := domain.OutputResult("abd", nil, nil)

	assert.Equal(t, verdict.Evaluate(tc, res), verdict.Evaluate(tc, res))
}

func testCases(n int) []*domain.TestCase {
	out := make([]*domain.TestCase, n)
	for i := range out {
		out[i] = &domain.TestCase{
			ID:             string(rune('a' + i)),
			Input:          string(rune('a' + i)),
			ExpectedOutput: string(rune('A' + i)),
		}
	}
	return out
}

func TestAggregatePreservesOrderAndCount(t *testing.T) {
	tcs := testCases(5)
	results := make([]*domain.ExecutionResult, len(tcs))
	for i, tc := range tcs {
		results[i] = domain.OutputResult(tc.ExpectedOutput+"\n", nil, nil)
	}

	verdicts, summary := verdict.Aggregate(tcs, results)

	require.Len(t, verdicts, len(tcs))
	for i, v := range verdicts {
		assert.Equal(t, i, v.Index)
		assert.Equal(t, tcs[i].ID, v.TestCase.ID)
	}
	assert.Equal(t, domain.RunSummary{TotalTests: 5, TotalPassed: 5}, summary)
}

func TestAggregateMixedOutcomes(t *testing.T) {
	tcs := testCases(3)
	results := []*domain.ExecutionResult{
		domain.OutputResult("A", nil, nil),
		domain.OutputResult("wrong", nil, nil),
		domain.ErrorResult("segfault"),
	}

	verdicts, summary := verdict.Aggregate(tcs, results)

	require.Len(t, verdicts, 3)
	assert.Equal(t, domain.VerdictPassed, verdicts[0].Category)
	assert.Equal(t, domain.VerdictFailed, verdicts[1].Category)
	assert.Equal(t, domain.VerdictRuntimeError, verdicts[2].Category)
	assert.Equal(t, domain.RunSummary{TotalTests: 3, TotalPassed: 1}, summary)
}

func TestAggregateMissingResults(t *testing.T) {
	tcs := testCases(3)

	t.Run("nil slot", func(t *testing.T) {
		results := []*domain.ExecutionResult{
			domain.OutputResult("A", nil, nil),
			nil,
			domain.OutputResult("C", nil, nil),
		}
		verdicts, summary := verdict.Aggregate(tcs, results)

		require.Len(t, verdicts, 3)
		assert.Equal(t, domain.VerdictRuntimeError, verdicts[1].Category)
		assert.Equal(t, tcs[1].ID, verdicts[1].TestCase.ID)
		assert.Equal(t, 2, summary.TotalPassed)
	})

	t.Run("short slice", func(t *testing.T) {
		verdicts, summary := verdict.Aggregate(tcs, []*domain.ExecutionResult{domain.OutputResult("A", nil, nil)})

		require.Len(t, verdicts, 3)
		assert.Equal(t, domain.VerdictPassed, verdicts[0].Category)
		assert.Equal(t, domain.VerdictRuntimeError, verdicts[1].Category)
		assert.Equal(t, domain.VerdictRuntimeError, verdicts[2].Category)
		assert.Equal(t, domain.RunSummary{TotalTests: 3, TotalPassed: 1}, summary)
	})
}

func TestAggregateEmpty(t *testing.T) {
	verdicts, summary := verdict.Aggregate(nil, nil)

	assert.Empty(t, verdicts)
	assert.Equal(t, domain.RunSummary{}, summary)
}
