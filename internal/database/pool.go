package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/internal/config"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

const connectTimeout = 10 * time.Second

// Connect opens a pool and pings it once.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := cfg.DSN()

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.LogDatabaseConnection(ctx, dsn, "parse_config", err)
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connCtx, poolCfg)
	if err != nil {
		logger.LogDatabaseConnection(ctx, dsn, "connect", err)
		return nil, err
	}

	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		logger.LogDatabaseConnection(ctx, dsn, "ping", err)
		return nil, err
	}

	logger.LogDatabaseConnection(ctx, dsn, "connect", nil)

	return pool, nil
}

// ConnectWithRetry calls Connect up to cfg.ConnectRetries times, sleeping
// cfg.RetryDelay between attempts. It gives up early when ctx is done.
func ConnectWithRetry(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	maxRetries := cfg.ConnectRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var err error
	for i := 0; i < maxRetries; i++ {
		slog.InfoContext(ctx, "Attempting to connect to database",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", maxRetries))

		var pool *pgxpool.Pool
		pool, err = Connect(ctx, cfg)
		if err == nil {
			slog.InfoContext(ctx, "Successfully connected to database")
			return pool, nil
		}

		if i == maxRetries-1 {
			break
		}

		slog.WarnContext(ctx, "Database connection failed, retrying...",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", cfg.RetryDelay))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.RetryDelay):
		}
	}

	return nil, fmt.Errorf("connect to database after %d attempts: %w", maxRetries, err)
}
