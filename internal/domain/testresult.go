package domain

// ExecutionResult is the raw outcome of running a submission against one
// test case. A non-nil Error means the execution itself failed.
type ExecutionResult struct {
	ActualOutput *string  `json:"actualOutput,omitempty"`
	RuntimeMs    *float64 `json:"runtimeMs,omitempty"`
	MemoryMb     *float64 `json:"memoryMb,omitempty"`
	Error        *string  `json:"error,omitempty"`
}

// OutputResult builds a successful execution result
func OutputResult(output string, runtimeMs, memoryMb *float64) *ExecutionResult {
	return &ExecutionResult{
		ActualOutput: &output,
		RuntimeMs:    runtimeMs,
		MemoryMb:     memoryMb,
	}
}

// ErrorResult builds a failed execution result
func ErrorResult(message string) *ExecutionResult {
	return &ExecutionResult{Error: &message}
}
