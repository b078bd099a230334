package config

import "os"

type AppConfig struct {
	DebugMode      bool
	HttpConfig     *HttpConfig
	JudgeConfig    *JudgeConfig
	SessionConfig  *SessionConfig
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	JwtConfig      *JwtConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		HttpConfig:     NewHttpConfig(),
		JudgeConfig:    NewJudgeConfig(),
		SessionConfig:  NewSessionConfig(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		JwtConfig:      NewJwtConfig(),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
