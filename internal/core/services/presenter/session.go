// Package presenter exposes the latest run result of a submission to a
// display surface and drives re-runs.
package presenter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/services/judge"
	"gitlab.com/develevate.net/internal/domain"
	"gitlab.com/develevate.net/internal/static/errs"
)

// Session owns the single displayed-result slot of one submission.
//
// State machine: Idle -> Running -> Displayed -> (Hidden | Running).
// Only the run started by the latest transition may write the slot; runs
// superseded by RunAgain are cancelled and their results dropped.
type Session struct {
	ID uuid.UUID

	submission *domain.Submission
	testCases  []*domain.TestCase
	judge      judge.IJudgeService
	logger     primary.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu         sync.Mutex
	state      domain.RunState
	visible    bool
	result     *domain.RunResult
	runErr     error
	generation uint64
	cancelRun  context.CancelFunc
	runDone    chan struct{}
	lastActive time.Time
	closed     bool
}

// NewSession creates an idle session for a submission and its test cases
func NewSession(
	submission *domain.Submission,
	testCases []*domain.TestCase,
	judgeSvc judge.IJudgeService,
	logger primary.Logger,
) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:         uuid.New(),
		submission: submission,
		testCases:  testCases,
		judge:      judgeSvc,
		logger:     logger,
		baseCtx:    ctx,
		baseCancel: cancel,
		state:      domain.RunStateIdle,
		lastActive: time.Now(),
	}
}

// Start triggers the first run. Valid only from Idle.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return closedSession(s.ID)
	}
	if s.state != domain.RunStateIdle {
		return invalidTransition("start", s.state)
	}
	s.launchLocked()
	return nil
}

// RunAgain discards the displayed verdicts and re-runs the same test case
// set with the current submission. A run still in flight is cancelled.
func (s *Session) RunAgain() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return closedSession(s.ID)
	}
	switch s.state {
	case domain.RunStateDisplayed, domain.RunStateHidden, domain.RunStateRunning:
	default:
		return invalidTransition("run again", s.state)
	}
	s.launchLocked()
	return nil
}

// Close hides the displayed results. Verdicts are kept.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return closedSession(s.ID)
	}
	if s.state != domain.RunStateDisplayed {
		return invalidTransition("close", s.state)
	}
	s.state = domain.RunStateHidden
	s.visible = false
	s.lastActive = time.Now()
	return nil
}

// View returns a consistent snapshot for rendering
func (s *Session) View() domain.RunView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()
	view := domain.RunView{
		SessionID: s.ID,
		State:     s.state,
		Visible:   s.visible,
		Result:    s.result,
	}
	if s.runErr != nil {
		view.Error = s.runErr.Error()
	}
	return view
}

// State returns the current state
func (s *Session) State() domain.RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submission returns the submission the session runs
func (s *Session) Submission() *domain.Submission {
	return s.submission
}

// Wait blocks until the latest run has settled or ctx is done
func (s *Session) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		done, gen, state := s.runDone, s.generation, s.state
		s.mu.Unlock()

		if state != domain.RunStateRunning || done == nil {
			return nil
		}

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		s.mu.Lock()
		settled := gen == s.generation && s.state != domain.RunStateRunning
		s.mu.Unlock()
		if settled {
			return nil
		}
	}
}

// Shutdown cancels any in-flight run and waits for run goroutines to exit
func (s *Session) Shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.baseCancel()
	s.wg.Wait()
}

func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, s.state == domain.RunStateRunning
}

// launchLocked must be called with s.mu held
func (s *Session) launchLocked() {
	if s.cancelRun != nil {
		s.cancelRun()
	}

	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(s.baseCtx)
	done := make(chan struct{})

	s.cancelRun = cancel
	s.runDone = done
	s.state = domain.RunStateRunning
	s.visible = true
	s.result = nil
	s.runErr = nil
	s.lastActive = time.Now()

	s.wg.Add(1)
	go s.run(ctx, cancel, gen, done)
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen uint64, done chan struct{}) {
	defer s.wg.Done()
	defer close(done)
	defer cancel()

	s.logger.Debug("Run dispatched", "sessionId", s.ID, "generation", gen)
	result, err := s.judge.Run(ctx, s.submission, s.testCases)

	if !s.display(gen, result, err) || err != nil {
		return
	}
	// only displayed runs go to history
	if err := s.judge.Record(context.WithoutCancel(ctx), s.submission, result); err != nil {
		s.logger.Warn("Run not recorded", "sessionId", s.ID, "runId", result.RunID, "error", err)
	}
}

// display writes the slot if gen is still current and reports whether it did
func (s *Session) display(gen uint64, result *domain.RunResult, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || s.closed {
		s.logger.Debug("Discarding superseded run", "sessionId", s.ID, "generation", gen, "current", s.generation)
		return false
	}

	s.cancelRun = nil
	s.state = domain.RunStateDisplayed
	s.visible = true
	s.result = result
	s.runErr = err
	s.lastActive = time.Now()

	if err != nil {
		s.logger.Warn("Run failed", "sessionId", s.ID, "error", err)
		return true
	}
	s.logger.Info("Run displayed",
		"sessionId", s.ID,
		"passed", result.Summary.TotalPassed,
		"total", result.Summary.TotalTests)
	return true
}

func invalidTransition(op string, state domain.RunState) error {
	return fmt.Errorf("%w: cannot %s from %s", errs.ErrInvalidTransition, op, state)
}

func closedSession(id uuid.UUID) error {
	return fmt.Errorf("%w: %s is closed", errs.ErrSessionNotFound, id)
}
