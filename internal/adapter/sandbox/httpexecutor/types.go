package httpexecutor

// ExecutionRequest is the body sent to the sandbox /execute endpoint
type ExecutionRequest struct {
	Language   string `json:"language"`
	SourceCode string `json:"source_code"`
	Stdin      string `json:"stdin"`
	TimeoutMS  int    `json:"timeout_ms"`
}

// ExecutionResponse is the sandbox reply
type ExecutionResponse struct {
	Stdout    string   `json:"stdout"`
	Stderr    string   `json:"stderr"`
	ExitCode  int      `json:"exit_code"`
	Error     string   `json:"error"`
	RuntimeMs *float64 `json:"runtime_ms,omitempty"`
	MemoryMb  *float64 `json:"memory_mb,omitempty"`
}
