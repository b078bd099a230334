package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/develevate.net/internal/adapter/crypto"
	"gitlab.com/develevate.net/internal/adapter/postgres/runrepository"
	"gitlab.com/develevate.net/internal/adapter/postgres/testcaserepository"
	"gitlab.com/develevate.net/internal/adapter/redis/testcasecache"
	"gitlab.com/develevate.net/internal/adapter/sandbox/dockerexecutor"
	"gitlab.com/develevate.net/internal/adapter/sandbox/httpexecutor"
	"gitlab.com/develevate.net/internal/config"
	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/core/ports/secondary"
	"gitlab.com/develevate.net/internal/core/services/history"
	"gitlab.com/develevate.net/internal/core/services/judge"
	"gitlab.com/develevate.net/internal/core/services/presenter"
	logger2 "gitlab.com/develevate.net/internal/global/logger"
	http2 "gitlab.com/develevate.net/internal/http"
	"gitlab.com/develevate.net/internal/schedulerengine"
)

func main() {
	InitReader()
	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sysCfg := config.NewSystemConfig()
	if sysCfg.DebugMode {
		logger2.SetDebug()
	}
	logger := logger2.Logger.With("service", sysCfg.HttpConfig.ServiceName)
	defer func() { _ = logger.Sync() }()
	logger.Info("Starting practice judge service", "executor", sysCfg.JudgeConfig.Executor)

	db, err := setupDatabase(sysCfg.PostgresConfig)
	if err != nil {
		logger.Error("Failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     sysCfg.RedisConfig.Url,
		Password: sysCfg.RedisConfig.Password,
		DB:       sysCfg.RedisConfig.DB,
	})
	defer redisClient.Close()

	// SECONDARY PORTS
	testCasePort := testcasecache.NewTestCaseCache(
		redisClient,
		testcaserepository.NewTestCaseRepository(db, logger),
		sysCfg.RedisConfig.TestCaseTTL,
		logger,
	)
	runPort := runrepository.NewRunRepository(db, logger)
	executor, closeExecutor, err := setupExecutor(sysCfg.JudgeConfig, logger)
	if err != nil {
		logger.Error("Failed to set up code executor", "error", err)
		os.Exit(1)
	}
	defer closeExecutor()

	//primary ports
	jwtProvider := crypto.NewJWTService(sysCfg.JwtConfig)

	//services
	judgeSvc := judge.NewJudgeService(executor, testCasePort, runPort, logger, sysCfg.JudgeConfig)
	sessionSvc := presenter.NewManager(judgeSvc, logger)
	historySvc := history.NewHistoryService(runPort, logger)
	serviceProvider := http2.NewServiceProvider(sessionSvc, historySvc, jwtProvider)

	//server
	httServer := http2.NewServer(sysCfg.HttpConfig.Port, sysCfg.HttpConfig.ServiceName, *serviceProvider, logger)
	if err := httServer.Init(); err != nil {
		logger.Error("Failed to init http server", "error", err)
		os.Exit(1)
	}

	ctxBg, stopBg := context.WithCancel(context.Background())
	httServer.Start(ctxBg)
	schedulerSvc := schedulerengine.NewSchedulerEngine(sysCfg.SessionConfig, sessionSvc, logger)
	schedulerSvc.StartSessionJanitor(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httServer.Stop(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	stopBg()
	schedulerSvc.Wait()
	sessionSvc.Shutdown()

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// setupExecutor builds the sandbox adapter selected by JUDGE_EXECUTOR
func setupExecutor(cfg *config.JudgeConfig, logger primary.Logger) (secondary.CodeExecutor, func(), error) {
	switch cfg.Executor {
	case config.ExecutorHTTP:
		return httpexecutor.NewExecutor(cfg, logger), func() {}, nil
	case config.ExecutorDocker:
		executor, err := dockerexecutor.NewExecutor(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		warmCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := executor.Warm(warmCtx); err != nil {
			// missing images are pulled again on first use
			logger.Warn("Failed to pre-pull sandbox images", "error", err)
		}
		return executor, func() { _ = executor.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown executor %q", cfg.Executor)
	}
}

func InitReader() {
	environment := ""
	if len(os.Args) < 2 {
		log.Fatalf("Env not supplied in argument")
	} else {
		environment = os.Args[1]
	}

	err := godotenv.Load(environment + ".env")
	if err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}
}
