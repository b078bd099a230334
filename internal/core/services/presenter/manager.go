package presenter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/services/judge"
	"gitlab.com/develevate.net/internal/domain"
	"gitlab.com/develevate.net/internal/static/errs"
)

var _ IRunSessionService = (*Manager)(nil)

// Manager keeps the live run sessions
type Manager struct {
	judge  judge.IJudgeService
	logger primary.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a new session manager
func NewManager(judgeSvc judge.IJudgeService, logger primary.Logger) *Manager {
	return &Manager{
		judge:    judgeSvc,
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open loads the problem's test cases and starts the first run
func (m *Manager) Open(ctx context.Context, submission *domain.Submission) (*Session, error) {
	if submission == nil || strings.TrimSpace(submission.Code) == "" {
		return nil, errs.ErrEmptySubmission
	}

	testCases, err := m.judge.LoadTestCases(ctx, submission.ProblemID)
	if err != nil {
		return nil, err
	}

	session := NewSession(submission, testCases, m.judge, m.logger)
	if err := session.Start(); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("Run session opened",
		"sessionId", session.ID,
		"problemId", submission.ProblemID,
		"tests", len(testCases))
	return session, nil
}

// Get retrieves a session by ID
func (m *Manager) Get(sessionID uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrSessionNotFound, sessionID)
	}
	return session, nil
}

// Remove cancels any in-flight run and forgets the session
func (m *Manager) Remove(sessionID uuid.UUID) error {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrSessionNotFound, sessionID)
	}
	session.Shutdown()
	return nil
}

// EvictIdle removes settled sessions not touched since cutoff
func (m *Manager) EvictIdle(cutoff time.Time) int {
	m.mu.Lock()
	var evicted []*Session
	for id, session := range m.sessions {
		lastActive, running := session.idleSince()
		if running || !lastActive.Before(cutoff) {
			continue
		}
		delete(m.sessions, id)
		evicted = append(evicted, session)
	}
	m.mu.Unlock()

	for _, session := range evicted {
		session.Shutdown()
	}
	if len(evicted) > 0 {
		m.logger.Info("Evicted idle run sessions", "count", len(evicted))
	}
	return len(evicted)
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown stops every session
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Shutdown()
	}
}
