package presenter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gitlab.com/develevate.net/internal/domain"
)

// IRunSessionService manages the run sessions shown to the UI
type IRunSessionService interface {
	// Open loads the problem's test cases and starts the first run
	Open(ctx context.Context, submission *domain.Submission) (*Session, error)

	// Get retrieves a session by ID
	Get(sessionID uuid.UUID) (*Session, error)

	// Remove cancels any in-flight run and forgets the session
	Remove(sessionID uuid.UUID) error

	// EvictIdle removes sessions not touched since cutoff
	EvictIdle(cutoff time.Time) int
}
