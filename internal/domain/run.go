package domain

import "github.com/google/uuid"

// RunState represents the display state of a run session
type RunState string

const (
	RunStateIdle      RunState = "IDLE"
	RunStateRunning   RunState = "RUNNING"
	RunStateDisplayed RunState = "DISPLAYED"
	RunStateHidden    RunState = "HIDDEN"
)

// RunView is what a session exposes to the display surface
type RunView struct {
	SessionID uuid.UUID  `json:"sessionId"`
	State     RunState   `json:"state"`
	Visible   bool       `json:"visible"`
	Result    *RunResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
}
