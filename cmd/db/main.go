// Command db creates the todo schema and exits. It is safe to run repeatedly.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/Shishir-Kc/ThE-lIsT/internal/config"
	"github.com/Shishir-Kc/ThE-lIsT/internal/database"
	"github.com/Shishir-Kc/ThE-lIsT/internal/repository"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	loggerCfg := logger.Config{
		Level:    cfg.Logging.Level,
		FilePath: "",
	}

	if err := logger.SetupLogger(loggerCfg, "todo-db"); err != nil {
		panic("Failed to setup logger: " + err.Error())
	}

	ctx := context.Background()

	pool, err := database.ConnectWithRetry(ctx, cfg.Database)
	if err != nil {
		logger.LogError(ctx, err, "database_initialization")
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.NewStore(pool).InitializeSchema(ctx); err != nil {
		logger.LogError(ctx, err, "initialize_schema")
		pool.Close()
		os.Exit(1)
	}

	slog.Info("Schema is up to date", slog.String("db_name", cfg.Database.Name))
}
