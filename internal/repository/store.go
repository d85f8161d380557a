package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tableName = "todo"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS todo (
		id               UUID PRIMARY KEY,
		task_name        TEXT NOT NULL,
		task_description TEXT,
		start_date       TIMESTAMPTZ NOT NULL DEFAULT now(),
		end_date         TIMESTAMPTZ,
		ended_at         TIMESTAMPTZ,
		completed        BOOLEAN NOT NULL DEFAULT FALSE,
		priority_level   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_todo_task_name ON todo (task_name)`,
}

// Session is the transactional handle a single request reads and writes
// through. It is only valid inside the WithSession callback.
type Session interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store owns the todo table and the pool sessions are drawn from.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// InitializeSchema creates the todo table and its index when missing.
// Running it against an existing schema is a no-op.
func (s *Store) InitializeSchema(ctx context.Context) error {
	return s.WithSession(ctx, func(ctx context.Context, sess Session) error {
		for _, stmt := range schemaStatements {
			start := time.Now()
			_, err := sess.Exec(ctx, stmt)
			logger.LogDatabaseQuery(ctx, "initialize_schema", stmt, time.Since(start), err)
			if err != nil {
				return HandlePgxError("initialize_schema", err)
			}
		}

		slog.InfoContext(ctx, "Schema initialized", slog.String("table", tableName))
		return nil
	})
}

// WithSession runs fn inside a transaction scoped to one request. The
// transaction commits when fn returns nil and rolls back when fn returns an
// error or panics; in every case the connection goes back to the pool.
func (s *Store) WithSession(ctx context.Context, fn func(ctx context.Context, sess Session) error) (err error) {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return HandlePgxError("begin_session", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(ctx, tx)
			logger.LogSession(ctx, "panic", time.Since(start), fmt.Errorf("panic: %v", p))
			panic(p)
		}

		if err != nil {
			rollback(ctx, tx)
			logger.LogSession(ctx, "rollback", time.Since(start), err)
			return
		}

		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = HandlePgxError("commit_session", commitErr)
			logger.LogSession(ctx, "commit_failed", time.Since(start), err)
			return
		}

		logger.LogSession(ctx, "commit", time.Since(start), nil)
	}()

	return fn(ctx, tx)
}

func rollback(ctx context.Context, tx pgx.Tx) {
	// The request context may already be cancelled; the rollback must still
	// reach the server so the connection is released clean.
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.WarnContext(ctx, "Session rollback failed", slog.String("error", err.Error()))
	}
}
