package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slowHealthCheckThreshold = 100 * time.Millisecond

type HealthRepository interface {
	HealthCheck(ctx context.Context) error
}

type healthRepository struct {
	db *pgxpool.Pool
}

func NewHealthRepository(db *pgxpool.Pool) HealthRepository {
	return &healthRepository{
		db: db,
	}
}

// HealthCheck asks the pool whether the todo table exists (to_regclass). A
// query failure or a missing table both fail the check.
func (r *healthRepository) HealthCheck(ctx context.Context) error {
	start := time.Now()

	var tableExists bool
	err := r.db.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", tableName).Scan(&tableExists)
	duration := time.Since(start)

	if err != nil {
		r.logHealthCheckError(ctx, duration, err)
		return HandlePgxError("health_check", err)
	}

	if !tableExists {
		err := WrapError("health_check", ErrSchemaMissing)
		r.logHealthCheckError(ctx, duration, err)
		return err
	}

	logger.LogSlowOperation(ctx, "health_check", duration, slowHealthCheckThreshold)

	slog.DebugContext(ctx, "Health check successful",
		slog.Duration("duration", duration),
	)

	return nil
}

func (r *healthRepository) logHealthCheckError(ctx context.Context, duration time.Duration, err error) {
	slog.ErrorContext(ctx, "Health check failed",
		slog.String("operation", "health_check"),
		slog.String("error", err.Error()),
		slog.Duration("duration", duration),
		slog.String("type", "health_check_failure"),
	)
}
