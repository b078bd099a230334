package schedulerengine

import (
	"context"
	"sync"
	"time"

	"gitlab.com/develevate.net/internal/config"
	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/services/presenter"
)

// SchedulerEngine runs the periodic housekeeping of the judge service
type SchedulerEngine struct {
	SessionCfg *config.SessionConfig
	sessions   presenter.IRunSessionService
	logger     primary.Logger
	now        func() time.Time
	wg         sync.WaitGroup
}

func NewSchedulerEngine(
	sessionCfg *config.SessionConfig,
	sessions presenter.IRunSessionService,
	logger primary.Logger,
) *SchedulerEngine {
	return &SchedulerEngine{
		SessionCfg: sessionCfg,
		sessions:   sessions,
		logger:     logger,
		now:        time.Now,
	}
}

// StartSessionJanitor evicts idle run sessions every janitor interval until
// ctx is done
func (s *SchedulerEngine) StartSessionJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.SessionCfg.JanitorInterval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.EvictIdleSessions()
			}
		}
	}()
}

// EvictIdleSessions removes sessions idle for longer than the session TTL
func (s *SchedulerEngine) EvictIdleSessions() int {
	cutoff := s.now().Add(-s.SessionCfg.TTL)
	evicted := s.sessions.EvictIdle(cutoff)
	s.logger.Debug("Session janitor pass", "evicted", evicted, "cutoff", cutoff)
	return evicted
}

// Wait blocks until the janitor goroutine has exited
func (s *SchedulerEngine) Wait() {
	s.wg.Wait()
}
