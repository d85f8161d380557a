package main

import (
	"context"
	"log/slog"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/Shishir-Kc/ThE-lIsT/internal/cache"
	"github.com/Shishir-Kc/ThE-lIsT/internal/config"
	"github.com/Shishir-Kc/ThE-lIsT/internal/database"
	"github.com/Shishir-Kc/ThE-lIsT/internal/metrics"
	"github.com/Shishir-Kc/ThE-lIsT/internal/repository"
	"github.com/Shishir-Kc/ThE-lIsT/internal/service"
	grpcTransport "github.com/Shishir-Kc/ThE-lIsT/internal/transport/grpc"
	httpTransport "github.com/Shishir-Kc/ThE-lIsT/internal/transport/http"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/logger"
)

const serviceName = "todo-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	loggerCfg := logger.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
		FileName: cfg.Logging.FileName,
	}

	if err := logger.SetupLogger(loggerCfg, serviceName); err != nil {
		panic("Failed to setup logger: " + err.Error())
	}

	logger.LogServiceStart(serviceName, map[string]interface{}{
		"http_port":       cfg.Server.HTTPPort,
		"grpc_port":       cfg.Server.GRPCPort,
		"db_host":         cfg.Database.Host,
		"db_name":         cfg.Database.Name,
		"log_level":       cfg.Logging.Level,
		"redis_enabled":   cfg.Redis.Enabled,
		"metrics_enabled": cfg.Metrics.Enabled,
	})

	ctx := context.Background()

	dbPool, err := database.ConnectWithRetry(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := repository.NewStore(dbPool)
	if err := store.InitializeSchema(ctx); err != nil {
		logger.LogError(ctx, err, "initialize_schema")
		dbPool.Close()
		os.Exit(1)
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.URLs, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Enabled, cfg.Redis.TTL)
	if err != nil {
		logger.LogError(ctx, err, "initialize_cache")
		dbPool.Close()
		os.Exit(1)
	}

	var taskRepo repository.TaskRepository = repository.NewTaskRepository(store)
	if redisCache.Enabled() {
		taskRepo = repository.NewCachedTaskRepository(taskRepo, redisCache, cfg.Redis.TTL, cfg.Redis.ListTTL)
	}

	var m *metrics.Metrics
	var observer service.OperationObserver
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
		observer = m
	}

	healthService := service.NewHealthService(repository.NewHealthRepository(dbPool), redisCache)
	taskService := service.NewTaskService(taskRepo, observer)

	handlers := httpTransport.NewHTTPHandlers(cfg, healthService, taskService)
	httpServer := httpTransport.NewHTTPServer(cfg, handlers, m)
	grpcServer := grpcTransport.NewGRPCServer(cfg, healthService)

	go func() {
		if err := httpServer.StartServer(); err != nil {
			slog.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		if err := grpcServer.StartServer(); err != nil {
			slog.Error("gRPC server error", slog.String("error", err.Error()))
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		ctx,
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return httpServer.Stop(ctx)
			},
			"grpc-server": func(ctx context.Context) error {
				return grpcServer.Stop(ctx)
			},
			"redis-cache": func(ctx context.Context) error {
				return redisCache.Close()
			},
		},
	)

	exitCode := <-wait

	// Servers are drained by now; the pool goes last.
	dbPool.Close()
	logger.LogServiceStop(serviceName, "shutdown")

	os.Exit(exitCode)
}
