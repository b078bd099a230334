// Package httpexecutor runs submissions on a remote sandbox over HTTP.
package httpexecutor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"gitlab.com/develevate.net/internal/config"
	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/ports/secondary"
	"gitlab.com/develevate.net/internal/domain"
	"gitlab.com/develevate.net/internal/static/errs"
)

var _ secondary.CodeExecutor = (*Executor)(nil)

const maxResponseBytes = 4 << 20

// Executor implements the CodeExecutor interface against a sandbox HTTP API
type Executor struct {
	baseURL     string
	client      *http.Client
	limiter     *rate.Limiter
	caseTimeout time.Duration
	logger      primary.Logger
}

type Option func(*Executor)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(e *Executor) {
		e.client = client
	}
}

// NewExecutor creates a new sandbox HTTP executor
func NewExecutor(cfg *config.JudgeConfig, logger primary.Logger, opts ...Option) *Executor {
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	e := &Executor{
		baseURL:     strings.TrimRight(cfg.SandboxURL, "/"),
		client:      &http.Client{},
		limiter:     rate.NewLimiter(limit, burst),
		caseTimeout: cfg.CaseTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute sends the code and the test case input to the sandbox
func (e *Executor) Execute(ctx context.Context, submission *domain.Submission, testCase *domain.TestCase) (*domain.ExecutionResult, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(ExecutionRequest{
		Language:   submission.Language,
		SourceCode: submission.Code,
		Stdin:      testCase.Input,
		TimeoutMS:  int(e.caseTimeout / time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execution request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build execution request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrSandboxUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("%w: sandbox responded %s", errs.ErrSandboxUnavailable, resp.Status)
	}

	var out ExecutionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Error("Failed to decode sandbox response", "testCaseId", testCase.ID, "status", resp.StatusCode, "error", err)
		return domain.ErrorResult(fmt.Sprintf("invalid sandbox response: %v", err)), nil
	}

	if resp.StatusCode >= http.StatusBadRequest && out.Error == "" {
		out.Error = resp.Status
	}
	return toResult(out), nil
}

func toResult(out ExecutionResponse) *domain.ExecutionResult {
	switch {
	case out.Error != "":
		res := domain.ErrorResult(out.Error)
		res.RuntimeMs, res.MemoryMb = out.RuntimeMs, out.MemoryMb
		if out.Stdout != "" {
			res.ActualOutput = &out.Stdout
		}
		return res
	case out.ExitCode != 0:
		msg := fmt.Sprintf("exit code %d", out.ExitCode)
		if stderr := strings.TrimSpace(out.Stderr); stderr != "" {
			msg = fmt.Sprintf("%s: %s", msg, stderr)
		}
		res := domain.ErrorResult(msg)
		res.RuntimeMs, res.MemoryMb = out.RuntimeMs, out.MemoryMb
		if out.Stdout != "" {
			res.ActualOutput = &out.Stdout
		}
		return res
	default:
		return domain.OutputResult(out.Stdout, out.RuntimeMs, out.MemoryMb)
	}
}
