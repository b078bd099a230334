// Package dockerexecutor runs submissions in local throwaway containers.
package dockerexecutor

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"gitlab.com/develevate.net/internal/config"
	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/ports/secondary"
	"gitlab.com/develevate.net/internal/domain"
	"gitlab.com/develevate.net/internal/static/errs"
)

var _ secondary.CodeExecutor = (*Executor)(nil)

const (
	maxOutputBytes = 1 << 20
	pullTimeout    = 10 * time.Minute
	workDir        = "/tmp"
	inputFile      = "input.txt"
)

// Executor implements the CodeExecutor interface with the docker engine
type Executor struct {
	cli           *client.Client
	images        map[string]string
	memoryLimitMB int
	logger        primary.Logger

	pulls    singleflight.Group
	pulledMu sync.RWMutex
	pulled   map[string]bool
}

// NewExecutor creates a docker executor using the environment's docker host
func NewExecutor(cfg *config.JudgeConfig, logger primary.Logger) (*Executor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Executor{
		cli:           cli,
		images:        cfg.Images,
		memoryLimitMB: cfg.MemoryLimitMB,
		logger:        logger,
		pulled:        make(map[string]bool),
	}, nil
}

// Close releases the docker client
func (e *Executor) Close() error {
	return e.cli.Close()
}

// Execute runs the submission in a fresh container fed with the test case input
func (e *Executor) Execute(ctx context.Context, submission *domain.Submission, testCase *domain.TestCase) (*domain.ExecutionResult, error) {
	lang := normalizeLanguage(submission.Language)
	imageName, ok := e.images[lang]
	if !ok {
		return domain.ErrorResult(fmt.Sprintf("unsupported language: %s", submission.Language)), nil
	}
	cmd, archive, err := buildWorkspace(lang, submission.Code, testCase.Input)
	if err != nil {
		return domain.ErrorResult(err.Error()), nil
	}

	if err := e.ensureImage(ctx, imageName); err != nil {
		return nil, e.engineError(ctx, "pull image", err)
	}

	resp, err := e.cli.ContainerCreate(ctx, &container.Config{
		Image:           imageName,
		Cmd:             cmd,
		Tty:             false,
		AttachStdout:    true,
		AttachStderr:    true,
		NetworkDisabled: true,
	}, &container.HostConfig{
		Resources: container.Resources{
			Memory:     int64(e.memoryLimitMB) << 20,
			MemorySwap: int64(e.memoryLimitMB) << 20,
		},
	}, nil, nil, "")
	if err != nil {
		return nil, e.engineError(ctx, "create container", err)
	}
	defer e.remove(resp.ID)

	if err := e.cli.CopyToContainer(ctx, resp.ID, workDir, archive, container.CopyToContainerOptions{}); err != nil {
		return nil, e.engineError(ctx, "copy workspace", err)
	}

	attach, err := e.cli.ContainerAttach(ctx, resp.ID, container.AttachOptions{
		Stream: true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return nil, e.engineError(ctx, "attach container", err)
	}
	defer attach.Close()

	started := time.Now()
	if err := e.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, e.engineError(ctx, "start container", err)
	}

	var stdout, stderr bytes.Buffer
	copyDone := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&limitedWriter{w: &stdout, n: maxOutputBytes}, &limitedWriter{w: &stderr, n: maxOutputBytes}, attach.Reader)
		copyDone <- err
	}()

	var exitCode int64
	statusCh, errCh := e.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return nil, e.engineError(ctx, "wait container", err)
	case status := <-statusCh:
		exitCode = status.StatusCode
	}
	elapsed := float64(time.Since(started).Microseconds()) / 1000

	select {
	case <-copyDone:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	inspect, err := e.cli.ContainerInspect(ctx, resp.ID)
	if err == nil && inspect.ContainerJSONBase != nil && inspect.State != nil && inspect.State.OOMKilled {
		res := domain.ErrorResult("memory limit exceeded")
		res.RuntimeMs = &elapsed
		return res, nil
	}

	if exitCode != 0 {
		msg := fmt.Sprintf("exit code %d", exitCode)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg = fmt.Sprintf("%s: %s", msg, s)
		}
		res := domain.ErrorResult(msg)
		res.RuntimeMs = &elapsed
		return res, nil
	}

	return domain.OutputResult(stdout.String(), &elapsed, nil), nil
}

// Warm pulls every configured image. Call it once at startup so cold pulls
// do not count against the per-case timeout.
func (e *Executor) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, imageName := range e.images {
		g.Go(func() error {
			if err := e.ensureImage(ctx, imageName); err != nil {
				return fmt.Errorf("failed to pull %s: %w", imageName, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// ensureImage pulls imageName once. The pull itself is detached from ctx so
// a short case deadline does not abort it; concurrent callers share it.
func (e *Executor) ensureImage(ctx context.Context, imageName string) error {
	e.pulledMu.RLock()
	pulled := e.pulled[imageName]
	e.pulledMu.RUnlock()
	if pulled {
		return nil
	}

	ch := e.pulls.DoChan(imageName, func() (interface{}, error) {
		pullCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pullTimeout)
		defer cancel()
		if err := e.pull(pullCtx, imageName); err != nil {
			return nil, err
		}
		e.pulledMu.Lock()
		e.pulled[imageName] = true
		e.pulledMu.Unlock()
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) pull(ctx context.Context, imageName string) error {
	e.logger.Info("Pulling sandbox image", "image", imageName)
	pull, err := e.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return err
	}
	defer pull.Close()
	_, err = io.Copy(io.Discard, pull)
	return err
}

func (e *Executor) remove(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		e.logger.Warn("Failed to remove container", "containerId", containerID, "error", err)
	}
}

// engineError keeps context errors intact so the caller can tell a timeout
// from an unreachable docker daemon
func (e *Executor) engineError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	e.logger.Error("Docker engine call failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", errs.ErrSandboxUnavailable, op, err)
}

type language struct {
	file string
	run  string
}

var languages = map[string]language{
	"python":     {file: "main.py", run: "python3 main.py"},
	"javascript": {file: "main.js", run: "node main.js"},
	"go":         {file: "main.go", run: "go run main.go"},
}

func normalizeLanguage(lang string) string {
	switch l := strings.ToLower(strings.TrimSpace(lang)); l {
	case "py", "python3":
		return "python"
	case "js", "node", "nodejs":
		return "javascript"
	case "golang":
		return "go"
	default:
		return l
	}
}

// buildWorkspace returns the container command and a tar archive holding the
// source and the input, to be extracted into workDir. User content never
// reaches the command line.
func buildWorkspace(lang, code, input string) ([]string, io.Reader, error) {
	l, ok := languages[lang]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported language: %s", lang)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range map[string]string{l.file: code, inputFile: input} {
		hdr := &tar.Header{
			Name:    name,
			Mode:    0o644,
			Size:    int64(len(content)),
			ModTime: time.Now(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, nil, fmt.Errorf("failed to write archive header: %w", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			return nil, nil, fmt.Errorf("failed to write archive entry: %w", err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to close archive: %w", err)
	}

	script := fmt.Sprintf("cd %s && %s < %s", workDir, l.run, path.Join(workDir, inputFile))
	return []string{"sh", "-c", script}, &buf, nil
}

type limitedWriter struct {
	w io.Writer
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		return len(p), nil
	}
	written := p
	if len(written) > l.n {
		written = written[:l.n]
	}
	if _, err := l.w.Write(written); err != nil {
		return 0, err
	}
	l.n -= len(written)
	return len(p), nil
}
