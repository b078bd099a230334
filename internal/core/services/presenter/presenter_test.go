package presenter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gitlab.com/develevate.net/internal/adapter/logging"
	"gitlab.com/develevate.net/internal/core/services/presenter"
	"gitlab.com/develevate.net/internal/domain"
	"gitlab.com/develevate.net/internal/static/errs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeJudge tags every result with its call number in Summary.TotalPassed
type fakeJudge struct {
	mu       sync.Mutex
	calls    int
	recorded []int
	cases map[string][]*domain.TestCase
	run   func(ctx context.Context, call int) (*domain.RunResult, error)
}

func (f *fakeJudge) LoadTestCases(ctx context.Context, problemID string) ([]*domain.TestCase, error) {
	tcs, ok := f.cases[problemID]
	if !ok {
		return nil, errs.ErrProblemNotFound
	}
	return tcs, nil
}

func (f *fakeJudge) Run(ctx context.Context, submission *domain.Submission, testCases []*domain.TestCase) (*domain.RunResult, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	if f.run != nil {
		return f.run(ctx, call)
	}
	return tagged(call, len(testCases)), nil
}

func (f *fakeJudge) Record(ctx context.Context, submission *domain.Submission, result *domain.RunResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, result.Summary.TotalPassed)
	return nil
}

func (f *fakeJudge) Recorded() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.recorded...)
}

func (f *fakeJudge) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func tagged(call, total int) *domain.RunResult {
	return &domain.RunResult{Summary: domain.RunSummary{TotalTests: total, TotalPassed: call}}
}

func newSession(j *fakeJudge) *presenter.Session {
	tcs := []*domain.TestCase{{ID: "1", Input: "2 3", ExpectedOutput: "5"}}
	return presenter.NewSession(domain.NewSubmission("u", "code", "python", "p"), tcs, j, logging.NewNopLogger())
}

func waitFor(t *testing.T, s *presenter.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func TestSessionLifecycle(t *testing.T) {
	s := newSession(&fakeJudge{})
	defer s.Shutdown()

	view := s.View()
	assert.Equal(t, domain.RunStateIdle, view.State)
	assert.False(t, view.Visible)

	require.NoError(t, s.Start())
	waitFor(t, s)

	view = s.View()
	assert.Equal(t, domain.RunStateDisplayed, view.State)
	assert.True(t, view.Visible)
	require.NotNil(t, view.Result)
	assert.Equal(t, 1, view.Result.Summary.TotalTests)

	require.NoError(t, s.Close())
	view = s.View()
	assert.Equal(t, domain.RunStateHidden, view.State)
	assert.False(t, view.Visible)
	require.NotNil(t, view.Result, "close must not drop verdicts")

	require.NoError(t, s.RunAgain())
	waitFor(t, s)
	view = s.View()
	assert.Equal(t, domain.RunStateDisplayed, view.State)
	assert.Equal(t, 2, view.Result.Summary.TotalPassed)
}

func TestSessionInvalidTransitions(t *testing.T) {
	release := make(chan struct{})
	j := &fakeJudge{run: func(ctx context.Context, call int) (*domain.RunResult, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return tagged(call, 1), nil
	}}
	s := newSession(j)
	defer s.Shutdown()

	assert.ErrorIs(t, s.RunAgain(), errs.ErrInvalidTransition)
	assert.ErrorIs(t, s.Close(), errs.ErrInvalidTransition)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), errs.ErrInvalidTransition)
	assert.ErrorIs(t, s.Close(), errs.ErrInvalidTransition)

	close(release)
	waitFor(t, s)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), errs.ErrInvalidTransition)
	assert.ErrorIs(t, s.Start(), errs.ErrInvalidTransition)
}

func TestRunAgainClearsVerdictsAtomically(t *testing.T) {
	gate := make(chan struct{})
	j := &fakeJudge{run: func(ctx context.Context, call int) (*domain.RunResult, error) {
		if call > 1 {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return tagged(call, 1), nil
	}}
	s := newSession(j)
	defer s.Shutdown()

	require.NoError(t, s.Start())
	waitFor(t, s)
	require.NotNil(t, s.View().Result)

	require.NoError(t, s.RunAgain())
	view := s.View()
	assert.Equal(t, domain.RunStateRunning, view.State)
	assert.Nil(t, view.Result, "old verdicts must not be shown while re-running")

	close(gate)
	waitFor(t, s)
	assert.Equal(t, 2, s.View().Result.Summary.TotalPassed)
}

func TestRunAgainDiscardsSupersededRun(t *testing.T) {
	firstStarted := make(chan struct{})
	lateRelease := make(chan struct{})
	j := &fakeJudge{run: func(ctx context.Context, call int) (*domain.RunResult, error) {
		if call == 1 {
			close(firstStarted)
			// ignores cancellation and reports late
			<-lateRelease
			return tagged(call, 1), nil
		}
		return tagged(call, 1), nil
	}}
	s := newSession(j)
	defer s.Shutdown()

	require.NoError(t, s.Start())
	<-firstStarted

	require.NoError(t, s.RunAgain())
	waitFor(t, s)
	view := s.View()
	require.NotNil(t, view.Result)
	assert.Equal(t, 2, view.Result.Summary.TotalPassed)

	close(lateRelease)
	// waits for the superseded run goroutine to finish
	s.Shutdown()

	assert.Equal(t, 2, j.Calls())
	view = s.View()
	assert.Equal(t, domain.RunStateDisplayed, view.State)
	assert.Equal(t, 2, view.Result.Summary.TotalPassed, "superseded run must not overwrite the slot")
	assert.Equal(t, []int{2}, j.Recorded(), "only the displayed run goes to history")
}

func TestFailedRunIsNotRecorded(t *testing.T) {
	j := &fakeJudge{run: func(ctx context.Context, call int) (*domain.RunResult, error) {
		return nil, errs.ErrJudgeUnavailable
	}}
	s := newSession(j)
	require.NoError(t, s.Start())
	waitFor(t, s)
	s.Shutdown()

	assert.Empty(t, j.Recorded())
}

func TestTransitionsAfterShutdown(t *testing.T) {
	j := &fakeJudge{}
	s := newSession(j)
	require.NoError(t, s.Start())
	waitFor(t, s)
	s.Shutdown()

	assert.ErrorIs(t, s.RunAgain(), errs.ErrSessionNotFound)
	assert.ErrorIs(t, s.Close(), errs.ErrSessionNotFound)
	assert.Equal(t, 1, j.Calls())
	assert.Equal(t, domain.RunStateDisplayed, s.State())

	idle := newSession(j)
	idle.Shutdown()
	assert.ErrorIs(t, idle.Start(), errs.ErrSessionNotFound)
	assert.Equal(t, 1, j.Calls())
}

func TestRunAgainRacingRemove(t *testing.T) {
	j := &fakeJudge{cases: map[string][]*domain.TestCase{"p": {{ID: "1"}}}}
	m := presenter.NewManager(j, logging.NewNopLogger())
	defer m.Shutdown()

	s, err := m.Open(context.Background(), domain.NewSubmission("u", "code", "python", "p"))
	require.NoError(t, err)
	waitFor(t, s)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = s.RunAgain()
		}
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, m.Remove(s.ID))
	}()
	wg.Wait()

	calls := j.Calls()
	assert.ErrorIs(t, s.RunAgain(), errs.ErrSessionNotFound)
	s.Shutdown()
	assert.Equal(t, calls, j.Calls())
}

func TestRunAgainCancelsInFlightRun(t *testing.T) {
	cancelled := make(chan struct{})
	j := &fakeJudge{run: func(ctx context.Context, call int) (*domain.RunResult, error) {
		if call == 1 {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return tagged(call, 1), nil
	}}
	s := newSession(j)
	defer s.Shutdown()

	require.NoError(t, s.Start())
	require.NoError(t, s.RunAgain())

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded run was not cancelled")
	}
	waitFor(t, s)
	view := s.View()
	assert.Empty(t, view.Error)
	assert.Equal(t, 2, view.Result.Summary.TotalPassed)
}

func TestPipelineErrorIsDisplayed(t *testing.T) {
	j := &fakeJudge{run: func(ctx context.Context, call int) (*domain.RunResult, error) {
		if call == 1 {
			return nil, errs.ErrJudgeUnavailable
		}
		return tagged(call, 1), nil
	}}
	s := newSession(j)
	defer s.Shutdown()

	require.NoError(t, s.Start())
	waitFor(t, s)

	view := s.View()
	assert.Equal(t, domain.RunStateDisplayed, view.State)
	assert.Nil(t, view.Result)
	assert.Equal(t, errs.ErrJudgeUnavailable.Error(), view.Error)

	require.NoError(t, s.RunAgain())
	waitFor(t, s)
	view = s.View()
	assert.Empty(t, view.Error)
	require.NotNil(t, view.Result)
}

func TestShutdownStopsInFlightRun(t *testing.T) {
	j := &fakeJudge{run: func(ctx context.Context, call int) (*domain.RunResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	s := newSession(j)
	require.NoError(t, s.Start())

	done := make(chan struct{})
	go func() {
		s.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not return")
	}
}

func TestManager(t *testing.T) {
	j := &fakeJudge{cases: map[string][]*domain.TestCase{
		"two-sum": {{ID: "1", Input: "1 2", ExpectedOutput: "3"}, {ID: "2", Input: "2 2", ExpectedOutput: "4"}},
	}}
	m := presenter.NewManager(j, logging.NewNopLogger())
	defer m.Shutdown()

	_, err := m.Open(context.Background(), domain.NewSubmission("u", "", "python", "two-sum"))
	assert.ErrorIs(t, err, errs.ErrEmptySubmission)

	_, err = m.Open(context.Background(), domain.NewSubmission("u", "code", "python", "missing"))
	assert.ErrorIs(t, err, errs.ErrProblemNotFound)

	s, err := m.Open(context.Background(), domain.NewSubmission("u", "code", "python", "two-sum"))
	require.NoError(t, err)
	waitFor(t, s)
	assert.Equal(t, 2, s.View().Result.Summary.TotalTests)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	assert.Equal(t, 0, m.EvictIdle(time.Now().Add(-time.Hour)))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, m.EvictIdle(time.Now().Add(time.Hour)))
	assert.Equal(t, 0, m.Len())

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
	assert.ErrorIs(t, m.Remove(s.ID), errs.ErrSessionNotFound)
}

func TestManagerDoesNotEvictRunningSessions(t *testing.T) {
	release := make(chan struct{})
	j := &fakeJudge{
		cases: map[string][]*domain.TestCase{"p": {{ID: "1"}}},
		run: func(ctx context.Context, call int) (*domain.RunResult, error) {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return tagged(call, 1), nil
		},
	}
	m := presenter.NewManager(j, logging.NewNopLogger())
	defer m.Shutdown()

	s, err := m.Open(context.Background(), domain.NewSubmission("u", "code", "python", "p"))
	require.NoError(t, err)

	assert.Equal(t, 0, m.EvictIdle(time.Now().Add(time.Hour)))
	close(release)
	waitFor(t, s)
	require.NoError(t, m.Remove(s.ID))
	assert.Equal(t, 0, m.Len())
}
