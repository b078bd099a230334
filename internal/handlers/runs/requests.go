package runs

import "github.com/google/uuid"

// CreateRunRequest represents a request to run code against a problem's tests
type CreateRunRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// CreateRunResponse represents a response to a create run request
type CreateRunResponse struct {
	SessionID uuid.UUID `json:"sessionId"`
}
