// Package testcasecache is a Redis read-through cache for problem test cases
package testcasecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/ports/secondary"
	"gitlab.com/develevate.net/internal/domain"
)

const (
	testCaseKeyPrefix = "testcases:"
	defaultExpiration = 10 * time.Minute
)

var _ secondary.TestCaseRepository = (*TestCaseCache)(nil)

// TestCaseCache serves test cases from Redis and falls back to the wrapped
// repository on a miss. Test cases are immutable, so entries only expire.
type TestCaseCache struct {
	redisClient *redis.Client
	next        secondary.TestCaseRepository
	expiration  time.Duration
	logger      primary.Logger
}

// NewTestCaseCache creates a new Redis test case cache
func NewTestCaseCache(redisClient *redis.Client, next secondary.TestCaseRepository, expiration time.Duration, logger primary.Logger) *TestCaseCache {
	if expiration <= 0 {
		expiration = defaultExpiration
	}
	return &TestCaseCache{
		redisClient: redisClient,
		next:        next,
		expiration:  expiration,
		logger:      logger,
	}
}

// GetTestCases retrieves the test cases of a problem
func (c *TestCaseCache) GetTestCases(ctx context.Context, problemID string) ([]*domain.TestCase, error) {
	key := testCaseKeyPrefix + problemID

	data, err := c.redisClient.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var testCases []*domain.TestCase
		if err := json.Unmarshal(data, &testCases); err == nil {
			c.logger.Debug("Test case cache hit", "problemId", problemID)
			return testCases, nil
		}
		c.logger.Warn("Dropping corrupt test case cache entry", "problemId", problemID)
		_ = c.redisClient.Del(ctx, key).Err()
	case err == redis.Nil:
	default:
		// cache is an optimisation, keep serving from the source
		c.logger.Warn("Failed to read test case cache", "problemId", problemID, "error", err)
	}

	testCases, err := c.next.GetTestCases(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if len(testCases) == 0 {
		return testCases, nil
	}

	payload, err := json.Marshal(testCases)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal test cases: %w", err)
	}
	if err := c.redisClient.Set(ctx, key, payload, c.expiration).Err(); err != nil {
		c.logger.Warn("Failed to write test case cache", "problemId", problemID, "error", err)
	}

	return testCases, nil
}

// Invalidate drops the cached test cases of a problem
func (c *TestCaseCache) Invalidate(ctx context.Context, problemID string) error {
	if err := c.redisClient.Del(ctx, testCaseKeyPrefix+problemID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate test cases: %w", err)
	}
	return nil
}
