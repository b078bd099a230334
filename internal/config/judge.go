package config

import "time"

const (
	ExecutorHTTP   = "http"
	ExecutorDocker = "docker"
)

type JudgeConfig struct {
	Executor    string
	SandboxURL  string
	CaseTimeout time.Duration
	MaxParallel int
	RatePerSec  float64
	RateBurst   int
	// docker executor only
	MemoryLimitMB int
	Images        map[string]string
}

func NewJudgeConfig() *JudgeConfig {
	return &JudgeConfig{
		Executor:      getEnv("JUDGE_EXECUTOR", ExecutorHTTP),
		SandboxURL:    getEnv("JUDGE_SANDBOX_URL", "http://localhost:8081"),
		CaseTimeout:   time.Duration(getIntEnv("JUDGE_CASE_TIMEOUT_MS", 5000)) * time.Millisecond,
		MaxParallel:   getIntEnv("JUDGE_MAX_PARALLEL", 4),
		RatePerSec:    getFloatEnv("JUDGE_RATE_PER_SEC", 20),
		RateBurst:     getIntEnv("JUDGE_RATE_BURST", 10),
		MemoryLimitMB: getIntEnv("JUDGE_MEMORY_LIMIT_MB", 256),
		Images: map[string]string{
			"python":     getEnv("JUDGE_IMAGE_PYTHON", "python:3.12-slim"),
			"javascript": getEnv("JUDGE_IMAGE_JAVASCRIPT", "node:20-alpine"),
			"go":         getEnv("JUDGE_IMAGE_GO", "golang:1.23-alpine"),
		},
	}
}

type SessionConfig struct {
	TTL             time.Duration
	JanitorInterval time.Duration
}

func NewSessionConfig() *SessionConfig {
	return &SessionConfig{
		TTL:             getSecondsEnv("JUDGE_SESSION_TTL_SEC", 900),
		JanitorInterval: getSecondsEnv("JUDGE_JANITOR_INTERVAL_SEC", 60),
	}
}
