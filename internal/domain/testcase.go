package domain

// TestCase represents one input/expected-output check of a problem.
// Test cases are immutable once defined and owned by the problem.
type TestCase struct {
	ID             string `json:"id" db:"id"`
	Input          string `json:"input" db:"input"`
	ExpectedOutput string `json:"expectedOutput" db:"expected_output"`
	IsHidden       bool   `json:"isHidden" db:"is_hidden"`
}

type TestCaseTable struct {
	ID             string
	ProblemID      string
	Position       string
	Input          string
	ExpectedOutput string
	IsHidden       string
}

func GetTestCaseTable() TestCaseTable {
	return TestCaseTable{
		ID:             "id",
		ProblemID:      "problem_id",
		Position:       "position",
		Input:          "input",
		ExpectedOutput: "expected_output",
		IsHidden:       "is_hidden",
	}
}

func (TestCaseTable) TableName() string {
	return "test_cases"
}
